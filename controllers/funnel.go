package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/BerniceZTT/kpi_funnel/metrics"
	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/render"
	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// FunnelsResponse 全部行的漏斗结果
type FunnelsResponse struct {
	Mode    models.LayoutMode    `json:"mode"`
	Policy  models.FailurePolicy `json:"policy"`
	Results []models.RowResult   `json:"results"`
	Failed  int                  `json:"failed"`
}

// GetFunnels 为会话中的每一行计算漏斗图形
func (d *Deps) GetFunnels(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	p, err := d.pipeline(c.Query("mode"), c.Query("policy"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	results, err := p.Run(sess.Table)
	if err != nil {
		countFunnelError(err)
		utils.HandleError(c, err)
		return
	}

	failed := lo.Filter(results, func(r models.RowResult, _ int) bool { return r.Err != nil })
	for _, r := range failed {
		countFunnelError(r.Err)
	}

	utils.SuccessResponse(c, FunnelsResponse{
		Mode:    p.Mode,
		Policy:  p.Policy,
		Results: results,
		Failed:  len(failed),
	}, "")
}

// GetChart 渲染指定行的漏斗图，format 参数支持 svg 和 png
func (d *Deps) GetChart(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	row, err := utils.ParseRowParam(c, "row")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if row >= sess.Table.RowCount() {
		utils.HandleError(c, utils.CreateNotFoundError(fmt.Sprintf("第 %d 行", row)))
		return
	}
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}
	p, err := d.pipeline(c.Query("mode"), "")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	schema, err := service.ValidateSchema(sess.Table.Columns())
	if err != nil {
		countFunnelError(err)
		utils.HandleError(c, err)
		return
	}
	result := p.BuildRow(sess.Table, schema, row)
	if result.Err != nil {
		countFunnelError(result.Err)
		utils.HandleError(c, result.Err)
		return
	}

	start := time.Now()
	renderer := render.New(d.ChartWidth, d.ChartHeight, format)
	var buf bytes.Buffer
	if err := renderer.Render(&buf, result.Chart); err != nil {
		utils.HandleError(c, err)
		return
	}
	metrics.RenderDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	metrics.ChartsRendered.WithLabelValues(string(format), string(p.Mode)).Inc()

	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition",
		fmt.Sprintf("inline; filename=q%d%s", result.Chart.Quarter, renderer.Extension()))
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}

func countFunnelError(err error) {
	if code := service.ErrorCode(err); code != "" {
		metrics.FunnelErrors.WithLabelValues(code).Inc()
	}
}
