package service

import (
	"fmt"
	"strings"

	"github.com/BerniceZTT/kpi_funnel/models"
)

// ParseFailurePolicy 解析失败策略，空串返回 fallback
func ParseFailurePolicy(s string, fallback models.FailurePolicy) (models.FailurePolicy, error) {
	switch models.FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case models.FailureAbort:
		return models.FailureAbort, nil
	case models.FailureSkip:
		return models.FailureSkip, nil
	}
	return "", fmt.Errorf("失败策略 %q: %w", s, ErrInvalidMode)
}

// Pipeline 逐行执行 提取 -> 几何计算
type Pipeline struct {
	Mode   models.LayoutMode
	Policy models.FailurePolicy
	Year   int
}

// BuildRow 处理单行，返回该行的结果
func (p Pipeline) BuildRow(src TableSource, schema *Schema, row int) models.RowResult {
	result := models.RowResult{Row: row}
	funnelRow, err := ExtractRow(src, schema, row)
	if err == nil {
		result.Chart, err = BuildFunnel(funnelRow, p.Mode, p.Year)
	}
	if err != nil {
		result.Chart = nil
		result.Err = err
		result.Error = err.Error()
		result.Code = ErrorCode(err)
	}
	return result
}

// Run 校验表头并处理全部行。
// abort 策略下第一行错误即返回该错误，skip 策略下错误记录在对应行的结果中。
func (p Pipeline) Run(src TableSource) ([]models.RowResult, error) {
	schema, err := ValidateSchema(src.Columns())
	if err != nil {
		return nil, err
	}
	results := make([]models.RowResult, 0, src.RowCount())
	for i := 0; i < src.RowCount(); i++ {
		res := p.BuildRow(src, schema, i)
		if res.Err != nil && p.Policy != models.FailureSkip {
			return nil, res.Err
		}
		results = append(results, res)
	}
	return results, nil
}
