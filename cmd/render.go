package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/render"
	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// RenderOptions render 命令参数
type RenderOptions struct {
	OutDir string
	Format string
	Mode   string
	Policy string
	Year   int
}

// NewRenderCommand 创建 render 命令
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "把工作簿中的每一行渲染为漏斗图文件",
		Example: `  kpifunnel render kpi.xlsx --out charts --format png
  kpifunnel render kpi.xlsx --mode top-driven --policy skip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", ".", "输出目录")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "svg", "输出格式: svg 或 png")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "布局模式: bottom-driven 或 top-driven")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "失败策略: abort 或 skip")
	cmd.Flags().IntVar(&opts.Year, "year", 0, "标题中的年份，默认取 FUNNEL_REPORT_YEAR")
	return cmd
}

func runRender(cmd *cobra.Command, path string, opts *RenderOptions) error {
	if !service.IsAllowedFile(path) {
		return fmt.Errorf("仅支持 .xlsx 和 .xlsm 文件: %s", path)
	}
	format, err := render.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	defaultLayout, err := service.ParseLayoutMode(cfg.DefaultLayout, models.LayoutBottomDriven)
	if err != nil {
		return err
	}
	mode, err := service.ParseLayoutMode(opts.Mode, defaultLayout)
	if err != nil {
		return err
	}
	defaultPolicy, err := service.ParseFailurePolicy(cfg.FailurePolicy, models.FailureAbort)
	if err != nil {
		return err
	}
	policy, err := service.ParseFailurePolicy(opts.Policy, defaultPolicy)
	if err != nil {
		return err
	}
	year := opts.Year
	if year == 0 {
		year = cfg.ReportYear
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	table, sheet, err := service.LoadWorkbook(f)
	if err != nil {
		return err
	}
	utils.Logger.Info().Str("file", path).Str("sheet", sheet).Int("rows", table.RowCount()).Msg("工作簿已读取")

	results, err := service.Pipeline{Mode: mode, Policy: policy, Year: year}.Run(table)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	renderer := render.New(cfg.ChartWidth, cfg.ChartHeight, format)
	written := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "跳过 Q%d: %s\n", res.Row+1, res.Error)
			continue
		}
		out := filepath.Join(opts.OutDir, fmt.Sprintf("q%d%s", res.Chart.Quarter, renderer.Extension()))
		if err := writeChart(renderer, out, res.Chart); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		written++
	}
	utils.Logger.Info().Int("charts", written).Str("out", opts.OutDir).Msg("渲染完成")
	return nil
}

func writeChart(r *render.Renderer, path string, fc *models.FunnelChart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := r.Render(f, fc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
