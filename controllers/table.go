package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// CellUpdate 单元格编辑请求
type CellUpdate struct {
	Row    *int   `json:"row" binding:"required"`
	Column string `json:"column" binding:"required"`
	Value  string `json:"value"`
}

// TableResponse 当前会话的表格
type TableResponse struct {
	SessionID string         `json:"sessionId"`
	FileName  string         `json:"fileName"`
	Sheet     string         `json:"sheet"`
	Table     *service.Table `json:"table"`
}

func tableResponse(sess *service.Session) TableResponse {
	return TableResponse{
		SessionID: sess.ID,
		FileName:  sess.FileName,
		Sheet:     sess.Sheet,
		Table:     sess.Table.Snapshot(),
	}
}

// GetTable 获取应用编辑后的表格
func (d *Deps) GetTable(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, tableResponse(sess), "")
}

// UpdateCell 编辑单元格
func (d *Deps) UpdateCell(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req CellUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据: "+err.Error()))
		return
	}

	if err := sess.Table.SetCell(*req.Row, req.Column, req.Value); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}

	utils.Logger.Debug().
		Str("session", sess.ID).
		Int("row", *req.Row).
		Str("column", req.Column).
		Msg("单元格已更新")
	utils.SuccessResponse(c, tableResponse(sess), "单元格已更新")
}

// AddRow 在表格末尾追加空行
func (d *Deps) AddRow(c *gin.Context) {
	sess, err := utils.GetSession(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	row := sess.Table.AddRow()
	utils.SuccessResponse(c, gin.H{
		"row":   row,
		"table": sess.Table.Snapshot(),
	}, "已添加行", http.StatusCreated)
}

// DeleteRow 删除指定行
func (d *Deps) DeleteRow(c *gin.Context) {
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
	if err := sess.Table.DeleteRow(row); err != nil {
		utils.HandleError(c, utils.CreateNotFoundError("行"))
		return
	}
	utils.SuccessResponse(c, tableResponse(sess), "已删除行")
}
