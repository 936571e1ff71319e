package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"paylink-core/internal/event"
	"paylink-core/internal/service/mq"
	"paylink-core/pkg/errno"
	"paylink-core/pkg/utils/lock"
)

// DepositConsumer 消费链上观察者发布的入金确认事件,
// 把屏蔽池入金凭证写进对应的支付链接。
// 入金确认是外部流程, 这里只是把确认结果落库的薄胶水。
type DepositConsumer struct {
	links    LinkManager
	consumer mq.Consumer
	distLock lock.DistributedLock
}

func NewDepositConsumer(links LinkManager, consumer mq.Consumer, distLock lock.DistributedLock) *DepositConsumer {
	return &DepositConsumer{
		links:    links,
		consumer: consumer,
		distLock: distLock,
	}
}

func (s *DepositConsumer) Start(ctx context.Context) error {
	log.Println("[Deposit] 启动入金确认消费者...")
	return s.consumer.Subscribe(ctx, event.TopicDepositConfirmed, s.handleDeposit)
}

func (s *DepositConsumer) handleDeposit(msg *mq.Message) error {
	// 1. 解析消息
	var evt event.DepositConfirmedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		log.Printf("[Deposit] Error: 解析消息失败: %v", err)
		return nil // 格式错误，不再重试
	}
	if evt.LinkID == "" || evt.DepositRef == "" || evt.Amount <= 0 {
		log.Printf("[Deposit] 消息字段不完整, 丢弃: %+v", evt)
		return nil
	}

	log.Printf("[Deposit] 收到入金确认: Link=%s, Ref=%s, Amount=%d", evt.LinkID, evt.DepositRef, evt.Amount)

	ctx := context.Background()

	// 2. 分布式锁: 同一凭证只让一个节点处理
	// (RecordDeposit 本身幂等, 锁只是减少无谓的冲突重试)
	lockKey := fmt.Sprintf("deposit:%s", evt.DepositRef)
	locked, err := s.distLock.Acquire(ctx, lockKey, 1*time.Minute)
	if err != nil {
		log.Printf("[Deposit] 获取锁系统错误: %v", err)
		return err // 重试
	}
	if !locked {
		log.Printf("[Deposit] 正在被其他节点处理, 跳过: %s", evt.DepositRef)
		return nil
	}
	defer s.distLock.Release(ctx, lockKey)

	// 3. 落库 (同一凭证重试是 no-op)
	if err := s.links.RecordDeposit(ctx, evt.LinkID, evt.DepositRef, evt.Amount); err != nil {
		if errors.Is(err, errno.ErrLinkNotFound) || errors.Is(err, errno.ErrDepositConflict) {
			// 不可恢复的业务错误, 重试也不会变好, ACK 掉并留日志
			log.Printf("[Deposit] 入金无法入账 (Link=%s): %v", evt.LinkID, err)
			return nil
		}
		return err // 存储暂时不可用, 重试
	}

	return nil
}
