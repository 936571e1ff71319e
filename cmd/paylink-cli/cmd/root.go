package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// apiBase 服务端地址, 所有子命令共用
var apiBase string

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "paylink-cli",
	Short: "支付链接运维命令行工具",
	Long: `屏蔽池支付链接服务的运维工具。
支持创建链接、查询链接状态 / 资金流水, 以及查看待人工对账的链接。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "http://localhost:8080", "paylink-server 地址")
}
