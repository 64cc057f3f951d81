package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/kpi_funnel/metrics"
	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/service"
	"github.com/BerniceZTT/kpi_funnel/utils"
)

// multipart 边界和表单头部预留的字节数
const multipartOverhead = 64 << 10

// UploadResponse 上传成功后的响应数据
type UploadResponse struct {
	SessionID string         `json:"sessionId"`
	Token     string         `json:"token"`
	FileName  string         `json:"fileName"`
	Sheet     string         `json:"sheet"`
	Stages    []string       `json:"stages"`
	Table     *service.Table `json:"table"`
	// Issues skip 策略下无法读取的行
	Issues []models.RowResult `json:"issues,omitempty"`
}

// UploadFile 上传Excel文件，校验工作表、表头与单元格后创建会话
func (d *Deps) UploadFile(c *gin.Context) {
	// 在解析 multipart 之前限制请求体大小，超出部分不会被读取
	if d.MaxUploadBytes > 0 {
		if c.Request.ContentLength > d.MaxUploadBytes+multipartOverhead {
			metrics.Uploads.WithLabelValues("rejected").Inc()
			utils.HandleError(c, d.fileTooLarge())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, d.MaxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("file")
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.HandleError(c, d.fileTooLarge())
			return
		}
		utils.HandleError(c, utils.CreateBadRequestError("请选择要上传的Excel文件"))
		return
	}

	if !service.IsAllowedFile(header.Filename) {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		utils.HandleError(c, utils.CreateBadRequestError("仅支持 .xlsx 和 .xlsm 文件"))
		return
	}

	// 检查文件大小限制
	if d.MaxUploadBytes > 0 && header.Size > d.MaxUploadBytes {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		utils.HandleError(c, d.fileTooLarge())
		return
	}

	utils.LogInfo(map[string]interface{}{
		"fileName": header.Filename,
		"size":     header.Size,
	}, "开始处理上传文件")

	f, err := header.Open()
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		utils.HandleError(c, fmt.Errorf("打开上传文件失败: %w", err))
		return
	}
	defer f.Close()

	table, sheet, err := service.LoadWorkbook(f)
	if err != nil {
		d.rejectUpload(c, err)
		return
	}

	// 上传时即校验表头结构
	schema, err := service.ValidateSchema(table.Headers)
	if err != nil {
		d.rejectUpload(c, err)
		return
	}

	// 加载时即读取全部单元格：abort 策略下第一处错误拒绝上传，skip 策略下逐行返回问题
	var issues []models.RowResult
	for i := 0; i < table.RowCount(); i++ {
		if _, err := service.ExtractRow(table, schema, i); err != nil {
			if d.Policy != models.FailureSkip {
				d.rejectUpload(c, err)
				return
			}
			metrics.FunnelErrors.WithLabelValues(service.ErrorCode(err)).Inc()
			issues = append(issues, models.RowResult{Row: i, Err: err, Error: err.Error(), Code: service.ErrorCode(err)})
		}
	}

	sess := service.NewSession(header.Filename, sheet, table)
	token, err := utils.GenerateSessionToken(sess.ID, d.SessionTTL)
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		utils.HandleError(c, fmt.Errorf("生成会话令牌失败: %w", err))
		return
	}
	d.Sessions.Save(sess)
	c.Set(utils.SessionContextKey, sess)
	c.SetCookie(utils.SessionCookie, token, int(d.SessionTTL.Seconds()), "/", "", false, true)

	metrics.Uploads.WithLabelValues("accepted").Inc()
	utils.LogInfo(map[string]interface{}{
		"session": sess.ID,
		"sheet":   sheet,
		"rows":    table.RowCount(),
		"stages":  len(schema.Stages),
	}, "上传文件解析完成")

	utils.SuccessResponse(c, UploadResponse{
		SessionID: sess.ID,
		Token:     token,
		FileName:  sess.FileName,
		Sheet:     sheet,
		Stages:    schema.StageNames(),
		Table:     table,
		Issues:    issues,
	}, "上传成功", http.StatusCreated)
}

func (d *Deps) fileTooLarge() *utils.ApiError {
	return utils.NewApiError(
		fmt.Sprintf("文件大小超出限制，最大支持 %dMB", d.MaxUploadBytes/1024/1024),
		http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE")
}

func (d *Deps) rejectUpload(c *gin.Context, err error) {
	if code := service.ErrorCode(err); code != "" {
		metrics.FunnelErrors.WithLabelValues(code).Inc()
		metrics.Uploads.WithLabelValues("rejected").Inc()
	} else {
		metrics.Uploads.WithLabelValues("failed").Inc()
	}
	utils.HandleError(c, err)
}
