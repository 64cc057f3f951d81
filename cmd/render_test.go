package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/BerniceZTT/kpi_funnel/service"
)

func writeWorkbook(t *testing.T, dir string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", service.SheetFallback))
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(service.SheetFallback, cell, v))
		}
	}
	path := filepath.Join(dir, "kpi.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, [][]interface{}{
		{"Lead (ist)", "Lead (soll)", "Deal (ist)", "Deal (soll)"},
		{100, 80, 40, 50},
		{0, 0, 0, 0},
		{70, 90, 20, 30},
	})
	out := filepath.Join(dir, "charts")

	_, _, err := runRoot(t, "render", path, "--out", out)
	assert.Equal(t, "DEGENERATE_SCALE", service.ErrorCode(err))

	stdout, stderr, err := runRoot(t, "render", path, "--out", out, "--policy", "skip", "--year", "2030")
	require.NoError(t, err)
	assert.Contains(t, stdout, "q1.svg")
	assert.Contains(t, stdout, "q3.svg")
	assert.Contains(t, stderr, "Q2")

	content, err := os.ReadFile(filepath.Join(out, "q3.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "KPI - Q3 2030")
	assert.NoFileExists(t, filepath.Join(out, "q2.svg"))
}

func TestRenderCommand_InvalidArgs(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, [][]interface{}{{"Lead (ist)", "Lead (soll)"}, {1, 1}})

	_, _, err := runRoot(t, "render", path, "--format", "gif")
	assert.Error(t, err)

	_, _, err = runRoot(t, "render", path, "--mode", "sideways")
	assert.ErrorIs(t, err, service.ErrInvalidMode)

	_, _, err = runRoot(t, "render", filepath.Join(dir, "kpi.csv"))
	assert.Error(t, err)
}
