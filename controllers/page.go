package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// PageData 首页模板数据
type PageData struct {
	HasSession bool
	FileName   string
	Sheet      string
	Table      *service.Table
	Stages     []string

	Mode    models.LayoutMode
	Policy  models.FailurePolicy
	Modes   []models.LayoutMode
	Results []models.RowResult

	// Error 页面顶部显示的错误信息
	Error string
}

// Index 渲染首页：上传表单、可编辑表格以及每行的漏斗图
func (d *Deps) Index(c *gin.Context) {
	data := PageData{
		Mode:   d.Layout,
		Policy: d.Policy,
		Modes:  []models.LayoutMode{models.LayoutBottomDriven, models.LayoutTopDriven},
	}

	p, err := d.pipeline(c.Query("mode"), c.Query("policy"))
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}
	data.Mode, data.Policy = p.Mode, p.Policy

	sess, err := utils.GetSession(c)
	if err != nil {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}
	data.HasSession = true
	data.FileName = sess.FileName
	data.Sheet = sess.Sheet
	data.Table = sess.Table.Snapshot()

	if schema, err := service.ValidateSchema(data.Table.Headers); err == nil {
		data.Stages = schema.StageNames()
	}

	results, err := p.Run(data.Table)
	if err != nil {
		countFunnelError(err)
		data.Error = err.Error()
	}
	data.Results = results
	for _, r := range results {
		if r.Err != nil {
			countFunnelError(r.Err)
		}
	}

	c.HTML(http.StatusOK, "index.html", data)
}
