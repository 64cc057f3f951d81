package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook 在内存中生成一个工作簿，rows 的第一行为表头
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestLoadWorkbook(t *testing.T) {
	buf := buildWorkbook(t, SheetPrimary, [][]interface{}{
		{"Quartal", "Lead (ist)", "Lead (soll)"},
		{"Q1", 100, 80},
		{},
		{"Q2", 12.5, 20},
	})

	table, sheet, err := LoadWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, SheetPrimary, sheet)
	assert.Equal(t, []string{"Quartal", "Lead (ist)", "Lead (soll)"}, table.Headers)
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, "100", table.Cell(0, "Lead (ist)"))
	assert.Equal(t, "12.5", table.Cell(1, "Lead (ist)"))
}

func TestLoadWorkbook_FallbackSheet(t *testing.T) {
	buf := buildWorkbook(t, SheetFallback, [][]interface{}{
		{"Lead (ist)", "Lead (soll)"},
		{1, 2},
	})
	_, sheet, err := LoadWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, SheetFallback, sheet)
}

func TestLoadWorkbook_MissingSheet(t *testing.T) {
	buf := buildWorkbook(t, "Daten", [][]interface{}{{"Lead (ist)"}})
	_, _, err := LoadWorkbook(buf)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Daten"}, schemaErr.Sheets)
	assert.Contains(t, err.Error(), SheetPrimary)
}

func TestLoadWorkbook_EmptySheet(t *testing.T) {
	buf := buildWorkbook(t, SheetPrimary, nil)
	_, _, err := LoadWorkbook(buf)
	assert.Equal(t, "SCHEMA_ERROR", ErrorCode(err))
}

func TestLoadWorkbook_NotExcel(t *testing.T) {
	_, _, err := LoadWorkbook(strings.NewReader("not a workbook"))
	require.Error(t, err)
	assert.Empty(t, ErrorCode(err))
}

func TestPickSheetPrefersPrimary(t *testing.T) {
	sheet, err := PickSheet([]string{SheetFallback, SheetPrimary})
	require.NoError(t, err)
	assert.Equal(t, SheetPrimary, sheet)
}

func TestIsAllowedFile(t *testing.T) {
	assert.True(t, IsAllowedFile("kpi.xlsx"))
	assert.True(t, IsAllowedFile("KPI.XLSM"))
	assert.False(t, IsAllowedFile("kpi.xls"))
	assert.False(t, IsAllowedFile("kpi.csv"))
}
