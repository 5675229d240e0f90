package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/santiaoqiao/xlbind/excel"
)

// writeContacts saves a workbook with a "Staff" and a "Guests" sheet, each with a header row.
func writeContacts(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Staff"))
	_, err := f.NewSheet("Guests")
	require.NoError(t, err)

	sheets := map[string][][]any{
		"Staff":  {{"Name", "Age"}, {"Alice", 30}, {"Bob", 41}},
		"Guests": {{"Name", "Age"}, {"Carol", 25}},
	}
	for sheet, rows := range sheets {
		for r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &rows[r]))
		}
	}

	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandSingleSheetSingleRow(t *testing.T) {
	path := writeContacts(t)

	out, err := execute(t, path, "--sheet", "[1]", "--row", "1", "--map", "Name=0,Age=1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "{Carol "), lines[0])
	assert.Contains(t, lines[0], " 25 ")
}

func TestCommandAllSheetsDump(t *testing.T) {
	path := writeContacts(t)

	out, err := execute(t, path, "--skip", "1", "--dump", "-m", "Name=0,Age=1")
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "(main.Contact)"))
	alice := strings.Index(out, `"Alice"`)
	bob := strings.Index(out, `"Bob"`)
	carol := strings.Index(out, `"Carol"`)
	require.True(t, alice >= 0 && bob >= 0 && carol >= 0, out)
	assert.True(t, alice < bob && bob < carol)
	assert.NotContains(t, out, `"Name"`)
}

func TestCommandSheetByName(t *testing.T) {
	path := writeContacts(t)

	out, err := execute(t, path, "--sheet", "Staff", "--skip", "1", "--map", "Name=0")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Carol")
}

func TestCommandUnknownField(t *testing.T) {
	path := writeContacts(t)

	_, err := execute(t, path, "--map", "Nickname=0")
	require.Error(t, err)
	assert.ErrorIs(t, err, excel.ErrNoSuchField)
}

func TestParseMapping(t *testing.T) {
	got, err := parseMapping(" Name=0, Age = 2 ,")
	require.NoError(t, err)
	assert.Equal(t, excel.FieldMapping{"Name": 0, "Age": 2}, got)

	_, err = parseMapping("Name")
	assert.Error(t, err)
	_, err = parseMapping("Name=x")
	assert.Error(t, err)
}

func TestLoadMappingMergesFileAndFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Name: 0\nAge: 1\n"), 0644))

	got, err := loadMapping(path, "Age=3,Email=2")
	require.NoError(t, err)
	assert.Equal(t, excel.FieldMapping{"Name": 0, "Age": 3, "Email": 2}, got)
}

func TestLoadMappingRequired(t *testing.T) {
	_, err := loadMapping("", "")
	assert.Error(t, err)
}

func TestSelectSheet(t *testing.T) {
	cfg := excel.For(excel.SchemaOf[Contact]())
	for _, s := range []string{"", "[]", "[2]", "Contacts"} {
		_, err := selectSheet(cfg, s)
		assert.NoError(t, err, s)
	}
	_, err := selectSheet(cfg, "[two]")
	assert.Error(t, err)
}
