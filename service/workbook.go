package service

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

const (
	SheetPrimary  = "Sheet2"
	SheetFallback = "Tabelle (2)" // 德语环境导出的工作表名
)

// AllowedExtensions 支持上传的文件类型
var AllowedExtensions = []string{".xlsx", ".xlsm"}

// IsAllowedFile 检查文件扩展名
func IsAllowedFile(name string) bool {
	return lo.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(name)))
}

// PickSheet 优先选择 Sheet2，其次 Tabelle (2)
func PickSheet(sheets []string) (string, error) {
	for _, want := range []string{SheetPrimary, SheetFallback} {
		if lo.Contains(sheets, want) {
			return want, nil
		}
	}
	return "", &SchemaError{Sheets: sheets}
}

// LoadWorkbook 读取 Excel 文件，返回所选工作表的表格
func LoadWorkbook(r io.Reader) (*Table, string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("无法读取 Excel 文件: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := PickSheet(f.GetSheetList())
	if err != nil {
		return nil, "", err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("读取工作表 %q 失败: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, "", &SchemaError{Sheets: f.GetSheetList(), Reason: fmt.Sprintf("工作表 %q 为空", sheet)}
	}

	// 去掉完全空白的数据行
	data := lo.Filter(rows[1:], func(row []string, _ int) bool {
		return lo.ContainsBy(row, func(cell string) bool { return strings.TrimSpace(cell) != "" })
	})
	return NewTable(rows[0], data), sheet, nil
}
