package service

import (
	"fmt"
	"strings"
	"sync"
)

// TableSource 按列名、按行顺序访问的表格数据源
type TableSource interface {
	Columns() []string
	RowCount() int
	Cell(row int, column string) string
}

// Table 从工作表读取出的原始表格
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewTable 创建表格，表头去除首尾空白，每行补齐到表头长度
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{
		Headers: make([]string, len(headers)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for i, h := range headers {
		t.Headers[i] = strings.TrimSpace(h)
	}
	for _, r := range rows {
		row := make([]string, len(headers))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) Columns() []string { return t.Headers }

func (t *Table) RowCount() int { return len(t.Rows) }

func (t *Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	idx := t.columnIndex(column)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][idx])
}

func (t *Table) columnIndex(column string) int {
	for i, h := range t.Headers {
		if h == column {
			return i
		}
	}
	return -1
}

type editableRow struct {
	source    int // 原始行号，新增行为 -1
	overrides map[string]string
}

// EditableTable 在原始表格之上叠加编辑，支持增删行
type EditableTable struct {
	mu   sync.RWMutex
	base *Table
	rows []editableRow
}

// NewEditableTable 包装原始表格
func NewEditableTable(base *Table) *EditableTable {
	t := &EditableTable{base: base}
	for i := range base.Rows {
		t.rows = append(t.rows, editableRow{source: i})
	}
	return t
}

func (t *EditableTable) Columns() []string { return t.base.Headers }

func (t *EditableTable) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *EditableTable) Cell(row int, column string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	r := t.rows[row]
	if v, ok := r.overrides[column]; ok {
		return strings.TrimSpace(v)
	}
	if r.source < 0 {
		return ""
	}
	return t.base.Cell(r.source, column)
}

// SetCell 覆盖单元格的值
func (t *EditableTable) SetCell(row int, column, value string) error {
	if t.base.columnIndex(column) < 0 {
		return fmt.Errorf("列 %q 不存在", column)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("行 %d 超出范围", row)
	}
	if t.rows[row].overrides == nil {
		t.rows[row].overrides = map[string]string{}
	}
	t.rows[row].overrides[column] = value
	return nil
}

// AddRow 在末尾追加一个空行，返回新行号
func (t *EditableTable) AddRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, editableRow{source: -1})
	return len(t.rows) - 1
}

// DeleteRow 删除指定行，后续行号前移
func (t *EditableTable) DeleteRow(row int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("行 %d 超出范围", row)
	}
	t.rows = append(t.rows[:row], t.rows[row+1:]...)
	return nil
}

// Snapshot 返回应用全部编辑后的表格副本
func (t *EditableTable) Snapshot() *Table {
	n := t.RowCount()
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.base.Headers))
		for j, h := range t.base.Headers {
			row[j] = t.Cell(i, h)
		}
		rows[i] = row
	}
	return &Table{Headers: t.base.Headers, Rows: rows}
}
