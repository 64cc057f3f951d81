// Package cmd 命令行入口：serve 启动Web服务，render 离线渲染漏斗图
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BerniceZTT/kpi_funnel/config"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// Version 版本号，构建时注入
var Version = "0.1.0"

var (
	envFile string
	cfg     *config.Config
)

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "kpifunnel",
		Short:   "KPI 漏斗图服务",
		Long:    "读取包含 Ist/Soll 列的 Excel 工作表，为每个季度生成一张 KPI 漏斗图。",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			cfg, err = config.LoadConfig(envFile)
			if err != nil {
				return err
			}
			utils.InitLogger(cfg.LogLevel, cfg.Debug)
			utils.InitJWT(cfg.JWTKey)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "环境变量文件")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewRenderCommand())
	return rootCmd
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
