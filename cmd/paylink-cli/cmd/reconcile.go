package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reconcileCmd 代表 reconcile 命令
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "列出待人工对账的链接",
	Long: `列出所有冻结在 claim_failed 状态的链接。
这些链接的提现结果不明确 (回滚失败或落账失败), 需要人工核对网关凭证。`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := doRequest("GET", "/api/v1/admin/reconciliation", nil); err != nil {
			fmt.Printf("查询失败: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
