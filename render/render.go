// Package render 使用 go-chart 的底层绘图接口把漏斗图形描述输出为 SVG 或 PNG。
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/BerniceZTT/kpi_funnel/models"
)

// Format 输出格式
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const (
	titleHeight   = 60
	titleFontSize = 16
	outlineWidth  = 1.5
	arrowHeadLen  = 8.0
	arrowHeadHalf = 4.0
)

var outlineDash = []float64{6, 4}

// ParseFormat 解析输出格式
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatSVG, "":
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("不支持的输出格式: %q", s)
}

// Renderer 漏斗图渲染器
type Renderer struct {
	Width  int
	Height int
	Format Format
}

// New 创建渲染器
func New(width, height int, format Format) *Renderer {
	return &Renderer{Width: width, Height: height, Format: format}
}

// ContentType 输出对应的 MIME 类型
func (r *Renderer) ContentType() string {
	if r.Format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Extension 输出文件扩展名
func (r *Renderer) Extension() string {
	return "." + string(r.Format)
}

func (r *Renderer) provider() chart.RendererProvider {
	if r.Format == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Render 绘制一张漏斗图并写入 w
func (r *Renderer) Render(w io.Writer, fc *models.FunnelChart) error {
	rr, err := r.provider()(r.Width, r.Height)
	if err != nil {
		return fmt.Errorf("创建绘图器失败: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("加载默认字体失败: %w", err)
	}

	cv := &canvas{
		r:      rr,
		font:   font,
		bounds: fc.Bounds,
		width:  r.Width,
		height: r.Height,
	}

	// 背景
	cv.fillRect(drawing.ColorWhite)

	// 分层绘制：填充在最下层，目标轮廓、标注和文字始终位于所有填充之上
	for _, shape := range fc.Shapes {
		cv.polygon(shape.Fill, drawing.ColorFromHex(strings.TrimPrefix(shape.FillColor, "#")))
	}
	for _, shape := range fc.Shapes {
		cv.dashedPath(shape.Outline, drawing.ColorBlack)
	}
	for _, shape := range fc.Shapes {
		cv.measurement(shape.IstMark)
		cv.measurement(shape.SollMark)
		cv.label(shape.Label)
	}

	cv.title(fc.Title)

	if err := rr.Save(w); err != nil {
		return fmt.Errorf("输出图表失败: %w", err)
	}
	return nil
}

type canvas struct {
	r      chart.Renderer
	font   *truetype.Font
	bounds models.Bounds
	width  int
	height int
}

// px 把归一化坐标映射到像素坐标，标题区域位于图表上方
func (c *canvas) px(p models.Point) (int, int) {
	plotH := float64(c.height - titleHeight)
	fx := (p.X - c.bounds.XMin) / (c.bounds.XMax - c.bounds.XMin)
	fy := (p.Y - c.bounds.YMin) / (c.bounds.YMax - c.bounds.YMin)
	x := fx * float64(c.width)
	y := float64(titleHeight) + (1-fy)*plotH
	return int(math.Round(x)), int(math.Round(y))
}

func (c *canvas) fillRect(col drawing.Color) {
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.MoveTo(0, 0)
	c.r.LineTo(c.width, 0)
	c.r.LineTo(c.width, c.height)
	c.r.LineTo(0, c.height)
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) polygon(points []models.Point, col drawing.Color) {
	if len(points) < 3 {
		return
	}
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(0.5)
	x, y := c.px(points[0])
	c.r.MoveTo(x, y)
	for _, p := range points[1:] {
		x, y = c.px(p)
		c.r.LineTo(x, y)
	}
	c.r.Close()
	c.r.FillStroke()
}

func (c *canvas) dashedPath(points []models.Point, col drawing.Color) {
	if len(points) < 2 {
		return
	}
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(outlineWidth)
	c.r.SetStrokeDashArray(outlineDash)
	x, y := c.px(points[0])
	c.r.MoveTo(x, y)
	for _, p := range points[1:] {
		x, y = c.px(p)
		c.r.LineTo(x, y)
	}
	c.r.Stroke()
}

func (c *canvas) line(from, to models.Point, col drawing.Color) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(1)
	x1, y1 := c.px(from)
	x2, y2 := c.px(to)
	c.r.MoveTo(x1, y1)
	c.r.LineTo(x2, y2)
	c.r.Stroke()
}

func (c *canvas) arrow(a models.Arrow, col drawing.Color) {
	c.line(a.From, a.To, col)

	fx, fy := c.px(a.From)
	tx, ty := c.px(a.To)
	dx, dy := float64(tx-fx), float64(ty-fy)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	bx, by := float64(tx)-ux*arrowHeadLen, float64(ty)-uy*arrowHeadLen

	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.MoveTo(tx, ty)
	c.r.LineTo(int(math.Round(bx-uy*arrowHeadHalf)), int(math.Round(by+ux*arrowHeadHalf)))
	c.r.LineTo(int(math.Round(bx+uy*arrowHeadHalf)), int(math.Round(by-ux*arrowHeadHalf)))
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) measurement(m models.Measurement) {
	c.line(m.Line[0], m.Line[1], drawing.ColorBlack)
	for _, a := range m.Arrows {
		c.arrow(a, drawing.ColorBlack)
	}
	c.label(m.Label)
}

func (c *canvas) label(l models.TextLabel) {
	x, y := c.px(l.Position)
	c.text(l.Text, x, y, l.Anchor, l.FontSize, drawing.ColorFromHex(strings.TrimPrefix(l.Color, "#")), l.Bold)
}

func (c *canvas) title(t string) {
	c.text(t, c.width/2, titleHeight/2, models.AnchorCenter, titleFontSize, drawing.ColorBlack, false)
}

// text 水平居中绘制文字，y 为锚点
func (c *canvas) text(body string, x, y int, anchor models.TextAnchor, size float64, col drawing.Color, bold bool) {
	c.r.ResetStyle()
	c.r.SetFont(c.font)
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)

	box := c.r.MeasureText(body)
	tx := x - box.Width()/2
	ty := y
	switch anchor {
	case models.AnchorCenter:
		ty = y + box.Height()/2
	case models.AnchorTop:
		ty = y + box.Height()
	}
	c.r.Text(body, tx, ty)
	if bold {
		// 默认字体没有粗体，偏移一个像素重绘
		c.r.Text(body, tx+1, ty)
	}
}
