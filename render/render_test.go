package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/kpi_funnel/models"
	"github.com/BerniceZTT/kpi_funnel/service"
)

func sampleChart(t *testing.T) *models.FunnelChart {
	t.Helper()
	row := models.FunnelRow{Index: 1, Stages: []models.StageRecord{
		{Name: "Lead", Actual: 100, Target: 80},
		{Name: "Angebot", Actual: 50, Target: 60},
	}}
	fc, err := service.BuildFunnel(row, models.LayoutBottomDriven, 2025)
	require.NoError(t, err)
	return fc
}

func TestRender_SVG(t *testing.T) {
	r := New(800, 600, FormatSVG)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleChart(t)))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "KPI - Q2 2025")
	assert.Contains(t, out, "Lead")
	assert.Contains(t, out, "Angebot")
	assert.Contains(t, out, "Ist: 100.00")
	assert.Contains(t, out, "Soll: 60.00")
	assert.Equal(t, "image/svg+xml", r.ContentType())
	assert.Equal(t, ".svg", r.Extension())
}

func TestRender_SVGLayerOrder(t *testing.T) {
	row := models.FunnelRow{}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		row.Stages = append(row.Stages, models.StageRecord{Name: name, Actual: 10, Target: 12})
	}
	fc, err := service.BuildFunnel(row, models.LayoutBottomDriven, 2025)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(600, 300, FormatSVG).Render(&buf, fc))
	out := buf.String()

	firstDash := strings.Index(out, "stroke-dasharray")
	lastDash := strings.LastIndex(out, "stroke-dasharray")
	firstText := strings.Index(out, "<text")
	require.Positive(t, firstDash)
	require.Positive(t, firstText)

	// 背景和每个阶段的填充都在第一条虚线轮廓之前，末尾的 <path 属于该轮廓本身
	assert.Equal(t, 1+len(fc.Shapes)+1, strings.Count(out[:firstDash], "<path"))
	// 所有轮廓都在任何文字之前
	assert.Less(t, lastDash, firstText)
	assert.Equal(t, len(fc.Shapes), strings.Count(out, "stroke-dasharray"))
}

func TestRender_PNG(t *testing.T) {
	r := New(400, 300, FormatPNG)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleChart(t)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	assert.Equal(t, "image/png", r.ContentType())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	f, err = ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestCanvasMapping(t *testing.T) {
	c := &canvas{bounds: service.CanvasBounds, width: 1400, height: 1360}
	x, y := c.px(models.Point{X: 0, Y: 0})
	assert.Equal(t, 0, x)
	assert.Equal(t, 1360, y)

	x, y = c.px(models.Point{X: 1.4, Y: 1.3})
	assert.Equal(t, 1400, x)
	assert.Equal(t, titleHeight, y)
}
