package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paylink-core/internal/handler"
	"paylink-core/internal/model"
	"paylink-core/internal/server"
	"paylink-core/internal/service"
	"paylink-core/internal/service/gateway"
	"paylink-core/internal/service/mq"
	"paylink-core/internal/store"
	"paylink-core/pkg/cache"
	"paylink-core/pkg/config"
	"paylink-core/pkg/database"
	"paylink-core/pkg/logger"
	"paylink-core/pkg/utils/lock"
	"paylink-core/pkg/validator"
)

// @title Paylink Core API
// @version 1.0
// @description Shielded payment link server API

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	// 3. 连接数据库
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 4. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 执行数据库迁移 (Auto Migrate) - 仅开发环境
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
		logger.Info("数据库自动迁移完成 (Dev Mode)")
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 6. 校验器
	validator.Init()

	// 7. 费率参数
	rate, err := decimal.NewFromString(config.Global.Fee.Rate)
	if err != nil {
		logger.Fatal("费率配置无效", zap.String("rate", config.Global.Fee.Rate), zap.Error(err))
	}
	fees := service.NewFeeCalculator(config.Global.Fee.BaseFee, rate)

	// 8. 仓储 / 缓存 / 网关
	linkStore := store.NewSQLLinkStore(db)
	linkCache := cache.NewRedisCache(rdb)
	relayer := gateway.NewRelayerClient(
		config.Global.Relayer.BaseURL,
		time.Duration(config.Global.Relayer.TimeoutSeconds)*time.Second,
	)

	// 9. 业务服务
	linkService := service.NewLinkService(linkStore, fees, linkCache)
	claimService := service.NewClaimService(linkStore, relayer, fees, linkCache)

	// 10. 初始化消息队列
	mqType := config.Global.Redis.MQType
	var producer mq.Producer
	var consumer mq.Consumer

	if mqType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		kafkaBrokers := config.Global.Kafka.Brokers
		producer = mq.NewKafkaProducer(kafkaBrokers)
		consumer = mq.NewKafkaConsumer(kafkaBrokers, "paylink_deposit_group")
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "paylink_deposit", "deposit-0")
	}

	// 11. 启动消息中继服务 (Outbox -> MQ)
	relayService := service.NewRelayService(db, producer)
	go relayService.Start(context.Background())

	// 12. 启动入金确认消费者
	depositConsumer := service.NewDepositConsumer(linkService, consumer, lock.NewRedisLock(rdb))
	go func() {
		if err := depositConsumer.Start(context.Background()); err != nil {
			logger.Error("入金消费者启动失败", zap.Error(err))
		}
	}()

	// 13. 启动对账巡检
	reconcile := service.NewReconcileService(linkStore, rdb)
	reconcile.Start()

	// 14. HTTP Router
	linkHandler := handler.NewLinkHandler(linkService, claimService)
	r := server.NewHTTPRouter(linkHandler)

	// 15. 启动应用 (阻塞)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.Run()

	// 16. 退出后资源清理
	reconcile.Stop()
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}
