package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/BerniceZTT/kpi_funnel/models"
)

const (
	ScalingFactor  = 0.8  // 宽度缩放系数，最宽处半宽为 0.4
	TopDrivenTaper = 0.8  // top-driven 模式下底边相对自身值的收窄系数
	MinHalfWidth   = 0.02 // top-driven 模式的最小底边半宽
	CenterX        = 0.5
	MeasureOffset  = 0.02 // 测量线距离顶边的垂直偏移
	ArrowLength    = 0.02

	StageFontSize   = 12
	MeasureFontSize = 10
)

// Palette 阶段填充色，按阶段序号循环使用（red, yellow, purple, blue）
var Palette = []string{"#ff0000", "#ffff00", "#800080", "#0000ff"}

const (
	colorDark  = "#000000"
	colorLight = "#ffffff"
)

// CanvasBounds 固定画布范围
var CanvasBounds = models.Bounds{XMin: 0, XMax: 1.4, YMin: 0, YMax: 1.3}

type edgeWidths struct {
	top    float64
	bottom float64
}

func halfWidth(value, maxValue float64) float64 {
	return (value / maxValue / 2) * ScalingFactor
}

// bottomDrivenWidths 自底向上：最底段收为一点，每段底边等于下一段顶边
func bottomDrivenWidths(values []float64, maxValue float64) []edgeWidths {
	n := len(values)
	out := make([]edgeWidths, n)
	for i := n - 1; i >= 0; i-- {
		out[i].top = halfWidth(values[i], maxValue)
		if i < n-1 {
			out[i].bottom = out[i+1].top
		} else {
			out[i].bottom = 0
		}
	}
	return out
}

// topDrivenWidths 自顶向下：每段顶边等于上一段底边，底边不低于 MinHalfWidth
func topDrivenWidths(values []float64, maxValue float64) []edgeWidths {
	out := make([]edgeWidths, len(values))
	for i, v := range values {
		if i == 0 {
			out[i].top = halfWidth(v, maxValue)
		} else {
			out[i].top = out[i-1].bottom
		}
		out[i].bottom = math.Max(halfWidth(v, maxValue)*TopDrivenTaper, MinHalfWidth)
	}
	return out
}

// ParseLayoutMode 解析布局模式，空串返回 fallback
func ParseLayoutMode(s string, fallback models.LayoutMode) (models.LayoutMode, error) {
	switch models.LayoutMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case models.LayoutBottomDriven:
		return models.LayoutBottomDriven, nil
	case models.LayoutTopDriven:
		return models.LayoutTopDriven, nil
	}
	return "", fmt.Errorf("布局模式 %q: %w", s, ErrInvalidMode)
}

func layoutWidths(values []float64, maxValue float64, mode models.LayoutMode) ([]edgeWidths, error) {
	switch mode {
	case models.LayoutBottomDriven:
		return bottomDrivenWidths(values, maxValue), nil
	case models.LayoutTopDriven:
		return topDrivenWidths(values, maxValue), nil
	}
	return nil, fmt.Errorf("布局模式 %q: %w", mode, ErrInvalidMode)
}

// TextColorFor 根据填充色亮度选择文字颜色：浅色背景用深色文字
func TextColorFor(fill string) string {
	c := drawing.ColorFromHex(strings.TrimPrefix(fill, "#"))
	luminance := (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
	if luminance > 0.5 {
		return colorDark
	}
	return colorLight
}

func measurement(y, w float64, text string, labelY float64, anchor models.TextAnchor) models.Measurement {
	left := models.Point{X: CenterX - w, Y: y}
	right := models.Point{X: CenterX + w, Y: y}
	return models.Measurement{
		Line: [2]models.Point{left, right},
		Arrows: [2]models.Arrow{
			{From: models.Point{X: left.X - ArrowLength, Y: y}, To: left},
			{From: models.Point{X: right.X + ArrowLength, Y: y}, To: right},
		},
		Label: models.TextLabel{
			Text:     text,
			Position: models.Point{X: CenterX, Y: labelY},
			Color:    colorDark,
			FontSize: MeasureFontSize,
			Anchor:   anchor,
		},
	}
}

func quad(top, bottom, yTop, yBottom float64) []models.Point {
	return []models.Point{
		{X: CenterX - top, Y: yTop},
		{X: CenterX + top, Y: yTop},
		{X: CenterX + bottom, Y: yBottom},
		{X: CenterX - bottom, Y: yBottom},
	}
}

// BuildFunnel 将一行数据转换为漏斗图形描述，顶部阶段在前
func BuildFunnel(row models.FunnelRow, mode models.LayoutMode, year int) (*models.FunnelChart, error) {
	n := len(row.Stages)
	if n == 0 {
		return nil, &EmptyRowError{Row: row.Index}
	}
	maxValue := row.MaxValue()
	if !(maxValue > 0) {
		return nil, &DegenerateScaleError{Row: row.Index, MaxValue: maxValue}
	}

	actuals := make([]float64, n)
	targets := make([]float64, n)
	for i, s := range row.Stages {
		actuals[i] = s.Actual
		targets[i] = s.Target
	}
	actualW, err := layoutWidths(actuals, maxValue, mode)
	if err != nil {
		return nil, err
	}
	targetW, err := layoutWidths(targets, maxValue, mode)
	if err != nil {
		return nil, err
	}

	chart := &models.FunnelChart{
		Title:    fmt.Sprintf("KPI - Q%d %d", row.Quarter(), year),
		Quarter:  row.Quarter(),
		Mode:     mode,
		MaxValue: maxValue,
		Bounds:   CanvasBounds,
		Shapes:   make([]models.StageShape, n),
	}

	for i, stage := range row.Stages {
		yTop := float64(n-i) / float64(n)
		yBottom := float64(n-i-1) / float64(n)
		a, t := actualW[i], targetW[i]

		outline := quad(t.top, t.bottom, yTop, yBottom)
		outline = append(outline, outline[0])

		fill := Palette[i%len(Palette)]
		istY := yTop + MeasureOffset
		sollY := yTop - MeasureOffset

		chart.Shapes[i] = models.StageShape{
			Stage:     stage.Name,
			Index:     i,
			Actual:    models.Trapezoid{TopHalfWidth: a.top, BottomHalfWidth: a.bottom, YTop: yTop, YBottom: yBottom},
			Target:    models.Trapezoid{TopHalfWidth: t.top, BottomHalfWidth: t.bottom, YTop: yTop, YBottom: yBottom},
			Fill:      quad(a.top, a.bottom, yTop, yBottom),
			Outline:   outline,
			FillColor: fill,
			Label: models.TextLabel{
				Text:     stage.Name,
				Position: models.Point{X: CenterX, Y: (yTop + yBottom) / 2},
				Color:    TextColorFor(fill),
				FontSize: StageFontSize,
				Bold:     true,
				Anchor:   models.AnchorCenter,
			},
			IstMark:  measurement(istY, a.top, fmt.Sprintf("Ist: %.2f", stage.Actual), istY+MeasureOffset, models.AnchorBottom),
			SollMark: measurement(sollY, t.top, fmt.Sprintf("Soll: %.2f", stage.Target), sollY-MeasureOffset, models.AnchorTop),
		}
	}
	return chart, nil
}
