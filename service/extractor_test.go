package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kpiHeaders = []string{"Quartal", "Lead (ist)", "Lead (soll)", "Angebot (ist)", "Angebot (soll)"}

func TestValidateSchema(t *testing.T) {
	schema, err := ValidateSchema(kpiHeaders)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lead", "Angebot"}, schema.StageNames())
	assert.Equal(t, StageColumns{Stage: "Lead", ActualColumn: "Lead (ist)", TargetColumn: "Lead (soll)"}, schema.Stages[0])
}

func TestValidateSchema_MarkerVariants(t *testing.T) {
	schema, err := ValidateSchema([]string{"Lead Soll", "Lead IST", "Deal (Ist)", "Deal soll"})
	require.NoError(t, err)
	require.Len(t, schema.Stages, 2)
	assert.Equal(t, "Lead Soll", schema.Stages[0].TargetColumn)
	assert.Equal(t, "Deal", schema.Stages[1].Stage)
}

func TestValidateSchema_Errors(t *testing.T) {
	_, err := ValidateSchema([]string{"Lead (ist)", "Angebot (ist)", "Angebot (soll)"})
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Lead", missing.Stage)
	assert.Equal(t, "MISSING_COLUMN", ErrorCode(err))

	_, err = ValidateSchema([]string{"Lead (ist)", "Lead ist", "Lead (soll)"})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestValidateSchema_NoStages(t *testing.T) {
	schema, err := ValidateSchema([]string{"Quartal", "Kommentar"})
	require.NoError(t, err)
	assert.Empty(t, schema.Stages)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 12.5 ", 12.5, true},
		{"12,5", 12.5, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, c.in)
		}
	}
}

func TestExtractRow(t *testing.T) {
	table := NewTable(kpiHeaders, [][]string{
		{"Q1", "100", "80", "50", "60"},
		{"Q2", "10", "", "5", "5"},
		{"Q3", "-1", "1", "1", "1"},
	})
	schema, err := ValidateSchema(table.Columns())
	require.NoError(t, err)

	row, err := ExtractRow(table, schema, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, row.Index)
	assert.Equal(t, 1, row.Quarter())
	require.Len(t, row.Stages, 2)
	assert.Equal(t, "Lead", row.Stages[0].Name)
	assert.Equal(t, 100.0, row.Stages[0].Actual)
	assert.Equal(t, 80.0, row.Stages[0].Target)
	assert.Equal(t, 100.0, row.MaxValue())

	_, err = ExtractRow(table, schema, 1)
	var nonNumeric *NonNumericError
	require.ErrorAs(t, err, &nonNumeric)
	assert.Equal(t, 1, nonNumeric.Row)
	assert.Equal(t, "Lead (soll)", nonNumeric.Column)

	_, err = ExtractRow(table, schema, 2)
	require.ErrorAs(t, err, &nonNumeric)
	assert.Equal(t, "-1", nonNumeric.Value)
}

func TestExtractRows(t *testing.T) {
	table := NewTable(kpiHeaders, [][]string{
		{"Q1", "100", "80", "50", "60"},
		{"Q2", "90", "85", "40", "45"},
	})
	rows, err := ExtractRows(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].Quarter())
	assert.Equal(t, 45.0, rows[1].Stages[1].Target)
}
