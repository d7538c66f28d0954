package cmd

import (
	"fmt"

	"stemhub/core/auth"

	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发 bearer token",
	Long:  `使用 JWT_SECRET 为指定用户和角色签发一个 bearer token，用于调用需要认证的接口。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			return err
		}
		token, err := issuer.GenerateToken(tokenUser, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "用户 ID")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", auth.RoleArtist, "角色: admin, artist 或 user")
	_ = tokenCmd.MarkFlagRequired("user")

	tokenCmd.Example = `  # 为艺人签发 token
  stemhub token -u "John Doe" -r artist`
}
