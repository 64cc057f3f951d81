package controllers

import (
	"time"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/repository"
	"github.com/BerniceZTT/kpi_funnel/service"
)

// Deps 处理器依赖
type Deps struct {
	Sessions       *service.SessionStore
	Audit          repository.AuditStore
	SessionTTL     time.Duration
	MaxUploadBytes int64
	// AdminToken 为空时操作日志接口不可用
	AdminToken string

	Layout models.LayoutMode
	Policy models.FailurePolicy
	Year   int

	ChartWidth  int
	ChartHeight int
}

// pipeline 根据查询参数覆盖默认的布局模式和失败策略
func (d *Deps) pipeline(mode, policy string) (service.Pipeline, error) {
	m, err := service.ParseLayoutMode(mode, d.Layout)
	if err != nil {
		return service.Pipeline{}, err
	}
	p, err := service.ParseFailurePolicy(policy, d.Policy)
	if err != nil {
		return service.Pipeline{}, err
	}
	return service.Pipeline{Mode: m, Policy: p, Year: d.Year}, nil
}
