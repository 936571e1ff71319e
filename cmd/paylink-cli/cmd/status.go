package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showLedger bool

// statusCmd 代表 status 命令
var statusCmd = &cobra.Command{
	Use:   "status <link_id>",
	Short: "查询链接状态",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		linkID := args[0]
		if err := doRequest("GET", "/api/v1/links/"+linkID, nil); err != nil {
			fmt.Printf("查询失败: %v\n", err)
			return
		}
		if showLedger {
			fmt.Println("--- 资金流水 ---")
			if err := doRequest("GET", "/api/v1/links/"+linkID+"/ledger", nil); err != nil {
				fmt.Printf("流水查询失败: %v\n", err)
			}
		}
	},
}

func init() {
	statusCmd.Flags().BoolVar(&showLedger, "ledger", false, "同时打印资金流水")
	rootCmd.AddCommand(statusCmd)
}
