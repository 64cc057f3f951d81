// Package templates 内嵌页面模板
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/BerniceZTT/kpi_funnel/service"
)

//go:embed *.html
var files embed.FS

// Load 解析全部页面模板
func Load() *template.Template {
	funcMap := template.FuncMap{
		"add":       func(a, b int) int { return a + b },
		"join":      strings.Join,
		"fmtNumber": func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"textColor": service.TextColorFor,
		"paletteColor": func(i int) string {
			return service.Palette[i%len(service.Palette)]
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(files, "*.html"))
}
