package cmd

import (
	"fmt"

	"stemhub/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `列出 MinIO 存储桶中的音频文件，或显示存储桶统计信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		objects, err := store.List(cmd.Context(), minioPrefix)
		if err != nil {
			return err
		}

		if minioStats {
			var total int64
			for _, obj := range objects {
				total += obj.Size
			}
			fmt.Fprintf(out, "存储桶 %s: %d 个文件, 共 %.2f MB\n",
				store.Bucket(), len(objects), float64(total)/(1<<20))
			return nil
		}

		for _, obj := range objects {
			fmt.Fprintf(out, "%-60s %10d  %s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(out, "共 %d 个文件\n", len(objects))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件, 例如 track/ 或 stem/")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")

	minioCmd.Example = `  # 列出所有文件
  stemhub minio

  # 只看分轨文件
  stemhub minio -p "stem/"

  # 显示存储桶统计信息
  stemhub minio -s`
}
