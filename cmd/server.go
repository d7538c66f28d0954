package cmd

import (
	"stemhub/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 stemhub 服务器",
	Long:  `启动 stemhub 的 HTTP 服务器，提供音轨、分轨和评论的 REST API。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
