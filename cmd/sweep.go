package cmd

import (
	"fmt"

	"stemhub/storage"

	"github.com/spf13/cobra"
)

var (
	sweepKind string
	sweepID   string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "删除某个音轨或分轨的全部音频文件",
	Long:  `按 {id}- 前缀删除存储中属于指定音轨或分轨的全部音频文件，不修改数据库记录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !storage.ValidKind(sweepKind) {
			return fmt.Errorf("--kind must be %q or %q", storage.KindTrack, storage.KindStem)
		}

		files, err := storage.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		removed, err := files.DeleteByPrefix(cmd.Context(), sweepKind, sweepID)
		fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 个文件\n", removed)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepKind, "kind", "k", storage.KindTrack, "文件类型: track 或 stem")
	sweepCmd.Flags().StringVar(&sweepID, "id", "", "音轨或分轨 ID")
	_ = sweepCmd.MarkFlagRequired("id")
}
