package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/BerniceZTT/kpi_funnel/models"
)

const (
	markerActual = "ist"
	markerTarget = "soll"
)

// StageColumns 一个阶段对应的实际值列与目标值列
type StageColumns struct {
	Stage        string `json:"stage"`
	ActualColumn string `json:"actualColumn"`
	TargetColumn string `json:"targetColumn"`
}

// Schema 表头校验后的阶段结构，按表头顺序排列
type Schema struct {
	Stages []StageColumns `json:"stages"`
}

// StageNames 阶段名称列表
func (s *Schema) StageNames() []string {
	return lo.Map(s.Stages, func(sc StageColumns, _ int) string { return sc.Stage })
}

// splitHeader 将 "Lead (ist)" 拆成 ("Lead", "ist")；没有标记时 marker 为空
func splitHeader(header string) (stage, marker string) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", ""
	}
	last := strings.ToLower(fields[len(fields)-1])
	last = strings.TrimSuffix(strings.TrimPrefix(last, "("), ")")
	return fields[0], last
}

// ValidateSchema 根据表头识别阶段并校验每个阶段都有配对的 soll 列
func ValidateSchema(columns []string) (*Schema, error) {
	targets := map[string]string{}
	for _, col := range columns {
		if stage, marker := splitHeader(col); marker == markerTarget {
			if _, ok := targets[stage]; !ok {
				targets[stage] = col
			}
		}
	}

	schema := &Schema{}
	seen := map[string]bool{}
	for _, col := range columns {
		stage, marker := splitHeader(col)
		if marker != markerActual {
			continue
		}
		if seen[stage] {
			return nil, &SchemaError{Reason: "阶段 \"" + stage + "\" 出现了多个 ist 列"}
		}
		seen[stage] = true

		target, ok := targets[stage]
		if !ok {
			return nil, &MissingColumnError{Stage: stage, Column: stage + " (soll)"}
		}
		schema.Stages = append(schema.Stages, StageColumns{
			Stage:        stage,
			ActualColumn: col,
			TargetColumn: target,
		})
	}
	return schema, nil
}

// ParseNumber 解析单元格数值，兼容逗号小数点
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot: // 1.234,5
		s = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case comma >= 0 && dot >= 0: // 1,234.5
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ExtractRow 按 schema 从数据源读取一行，生成 FunnelRow
func ExtractRow(src TableSource, schema *Schema, row int) (models.FunnelRow, error) {
	out := models.FunnelRow{Index: row, Stages: make([]models.StageRecord, 0, len(schema.Stages))}
	for _, sc := range schema.Stages {
		actual, err := readValue(src, row, sc.ActualColumn)
		if err != nil {
			return models.FunnelRow{}, err
		}
		target, err := readValue(src, row, sc.TargetColumn)
		if err != nil {
			return models.FunnelRow{}, err
		}
		out.Stages = append(out.Stages, models.StageRecord{
			Name:   sc.Stage,
			Actual: actual,
			Target: target,
		})
	}
	return out, nil
}

func readValue(src TableSource, row int, column string) (float64, error) {
	raw := src.Cell(row, column)
	v, ok := ParseNumber(raw)
	if !ok || v < 0 {
		return 0, &NonNumericError{Row: row, Column: column, Value: raw}
	}
	return v, nil
}

// ExtractRows 校验表头后读取全部行，遇到第一个错误即返回
func ExtractRows(src TableSource) ([]models.FunnelRow, error) {
	schema, err := ValidateSchema(src.Columns())
	if err != nil {
		return nil, err
	}
	rows := make([]models.FunnelRow, 0, src.RowCount())
	for i := 0; i < src.RowCount(); i++ {
		r, err := ExtractRow(src, schema, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}
