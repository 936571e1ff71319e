package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	createAmount int64
	createAsset  string
)

// createCmd 代表 create 命令
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "创建一条支付链接",
	Long:  `创建链接元数据并打印 link_id。入金确认之前链接不可领取。`,
	Run: func(cmd *cobra.Command, args []string) {
		if createAmount <= 0 {
			fmt.Println("金额必须为正数 (lamports)")
			return
		}
		err := doRequest("POST", "/api/v1/links", map[string]interface{}{
			"gross_amount": createAmount,
			"asset_type":   createAsset,
		})
		if err != nil {
			fmt.Printf("创建失败: %v\n", err)
		}
	},
}

func init() {
	createCmd.Flags().Int64Var(&createAmount, "amount", 0, "金额 (lamports)")
	createCmd.Flags().StringVar(&createAsset, "asset", "SOL", "资产符号")
	rootCmd.AddCommand(createCmd)
}
