package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode 未知的布局模式或失败策略
var ErrInvalidMode = errors.New("未知的模式")

// SchemaError 工作表缺失或表头结构不符合要求
type SchemaError struct {
	Sheets []string // 文件中实际存在的工作表
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("文件必须包含名为 '%s' 或 '%s' 的工作表（当前: %s）",
		SheetPrimary, SheetFallback, strings.Join(e.Sheets, ", "))
}

// MissingColumnError 阶段缺少配对的列
type MissingColumnError struct {
	Stage  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("阶段 %q 缺少列 %q", e.Stage, e.Column)
}

// NonNumericError 单元格不是合法的非负数值
type NonNumericError struct {
	Row    int
	Column string
	Value  string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("第 %d 行列 %q 的值 %q 不是有效的非负数值", e.Row+1, e.Column, e.Value)
}

// DegenerateScaleError 一行中所有值均为零，无法缩放
type DegenerateScaleError struct {
	Row      int
	MaxValue float64
}

func (e *DegenerateScaleError) Error() string {
	return fmt.Sprintf("第 %d 行的最大值为 %.2f，无法计算漏斗宽度", e.Row+1, e.MaxValue)
}

// EmptyRowError 一行中没有任何阶段
type EmptyRowError struct {
	Row int
}

func (e *EmptyRowError) Error() string {
	return fmt.Sprintf("第 %d 行没有任何阶段", e.Row+1)
}

// ErrorCode 返回领域错误对应的错误码，非领域错误返回空串
func ErrorCode(err error) string {
	var (
		schemaErr     *SchemaError
		missingErr    *MissingColumnError
		nonNumericErr *NonNumericError
		degenerateErr *DegenerateScaleError
		emptyErr      *EmptyRowError
	)
	switch {
	case errors.As(err, &schemaErr):
		return "SCHEMA_ERROR"
	case errors.As(err, &missingErr):
		return "MISSING_COLUMN"
	case errors.As(err, &nonNumericErr):
		return "NON_NUMERIC"
	case errors.As(err, &degenerateErr):
		return "DEGENERATE_SCALE"
	case errors.As(err, &emptyErr):
		return "EMPTY_ROW"
	case errors.Is(err, ErrInvalidMode):
		return "INVALID_MODE"
	}
	return ""
}
