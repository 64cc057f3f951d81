package repository

import (
	"context"
	"time"

	"github.com/BerniceZTT/kpi_funnel/utils"
)

// ScheduleDailyTaskAt 每天指定时间执行任务，ctx 取消后停止
func ScheduleDailyTaskAt(ctx context.Context, hour, min, sec int, task func(context.Context)) {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, now.Location())
			if !next.After(now) {
				next = next.Add(24 * time.Hour)
			}
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				task(ctx)
			}
		}
	}()
}

// PurgeExpiredLogs 删除超过保留期的操作日志
func PurgeExpiredLogs(ctx context.Context, store AuditStore, retention time.Duration) {
	before := time.Now().Add(-retention)
	utils.Logger.Info().Time("before", before).Msg("开始清理过期操作日志")

	removed, err := store.Purge(ctx, before)
	if err != nil {
		utils.Logger.Error().Err(err).Msg("清理过期操作日志失败")
		return
	}
	utils.Logger.Info().Int64("removed", removed).Msg("过期操作日志清理完成")
}
