package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/BerniceZTT/kpi_funnel/config"
	"github.com/BerniceZTT/kpi_funnel/controllers"
	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/repository"
	"github.com/BerniceZTT/kpi_funnel/routes"
	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// NewServeCommand 创建 serve 命令
func NewServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动Web服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口，覆盖 FUNNEL_PORT")
	return cmd
}

// NewDeps 根据配置组装处理器依赖
func NewDeps(cfg *config.Config, audit repository.AuditStore) (*controllers.Deps, error) {
	layout, err := service.ParseLayoutMode(cfg.DefaultLayout, models.LayoutBottomDriven)
	if err != nil {
		return nil, err
	}
	policy, err := service.ParseFailurePolicy(cfg.FailurePolicy, models.FailureAbort)
	if err != nil {
		return nil, err
	}
	return &controllers.Deps{
		Sessions:       service.NewSessionStore(cfg.SessionTTL),
		Audit:          audit,
		SessionTTL:     cfg.SessionTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AdminToken:     cfg.AdminToken,
		Layout:         layout,
		Policy:         policy,
		Year:           cfg.ReportYear,
		ChartWidth:     cfg.ChartWidth,
		ChartHeight:    cfg.ChartHeight,
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 未配置MongoDB时操作日志只保留在内存中
	var audit repository.AuditStore = repository.NewMemoryAuditStore(200)
	if cfg.MongoURI != "" {
		store, err := repository.NewMongoAuditStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
		audit = store
	} else {
		utils.Logger.Warn().Msg("未配置 FUNNEL_MONGO_URI，操作日志仅保存在内存中")
	}

	// 每天 03:00 清理过期操作日志
	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	repository.ScheduleDailyTaskAt(jobCtx, 3, 0, 0, func(ctx context.Context) {
		repository.PurgeExpiredLogs(ctx, audit, cfg.AuditRetention)
	})

	deps, err := NewDeps(cfg, audit)
	if err != nil {
		return err
	}
	router := routes.NewEngine(deps, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务器失败: %w", err)
	case <-quit:
	}
	utils.Logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭异常: %w", err)
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
	return nil
}
