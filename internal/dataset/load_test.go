package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSVInfersKinds(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "date,plot,yield,count,active,note\n" +
		"2024-08-10,A1,12.5,3,true,first\n" +
		"2024-08-12,A1,NA,4,false,\n" +
		"2024-08-15,B3,10.25,5,TRUE,third\n"
	require.NoError(t, afero.WriteFile(fs, "/data/harvest.csv", []byte(content), 0o644))

	d, err := Load(fs, "/data/harvest.csv", DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, "harvest.csv", d.Name)
	assert.Equal(t, 3, d.Rows())
	want := map[string]Kind{
		"date":   KindTime,
		"plot":   KindString,
		"yield":  KindFloat,
		"count":  KindInt,
		"active": KindBool,
		"note":   KindString,
	}
	for name, kind := range want {
		c, ok := d.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, kind, c.Kind, name)
	}
	yield, _ := d.Column("yield")
	assert.Equal(t, 1, yield.MissingCount())
	date, _ := d.Column("date")
	assert.Equal(t, time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC), date.Values[0].Time)
}

func TestReadCSVLocaleAndDelimiter(t *testing.T) {
	opt := DefaultLoadOptions()
	opt.Delimiter = ';'
	opt.DecimalSeparator = ','
	opt.ThousandsSeparator = '.'
	src := "amount;label\n1.000,5;a\n2,25;b\n"

	d, err := ReadCSV(strings.NewReader(src), "locale.csv", opt)
	require.NoError(t, err)
	amount, _ := d.Column("amount")
	require.Equal(t, KindFloat, amount.Kind)
	assert.InDeltaSlice(t, []float64{1000.5, 2.25}, amount.Floats(), 1e-9)
}

func TestReadCSVAllMissingColumnIsFloat(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("a,b\n1,\n2,\n"), "x.csv", DefaultLoadOptions())
	require.NoError(t, err)
	b, _ := d.Column("b")
	assert.Equal(t, KindFloat, b.Kind)
	assert.Equal(t, 2, b.MissingCount())
}

func TestReadCSVPadsShortRowsAndRenamesDuplicates(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("x,x,\n1,2,3\n4\n"), "x.csv", DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x.1", "column_3"}, d.ColumnNames())
	c, _ := d.Column("column_3")
	assert.Equal(t, 1, c.MissingCount())
}

func TestReadCSVMaxRowsAndEmpty(t *testing.T) {
	opt := DefaultLoadOptions()
	opt.MaxRows = 2
	d, err := ReadCSV(strings.NewReader("a\n1\n2\n3\n"), "x.csv", opt)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())

	_, err = ReadCSV(strings.NewReader(""), "empty.csv", DefaultLoadOptions())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestLoadTSVSniffsTab(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "t.tsv", []byte("a\tb\n1\tx\n"), 0o644))
	d, err := Load(fs, "t.tsv", DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.ColumnNames())
}

func writeWorkbook(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}))
	_, err := f.NewSheet("Readings")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Readings", "A1", &[]any{"Group", "Score"}))
	require.NoError(t, f.SetSheetRow("Readings", "A2", &[]any{"A", 10.5}))
	require.NoError(t, f.SetSheetRow("Readings", "A3", &[]any{"B", 11}))
	out, err := fs.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, f.Write(out))
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWorkbook(t, fs, "book.xlsx")

	opt := DefaultLoadOptions()
	opt.SheetName = "readings"
	d, err := Load(fs, "book.xlsx", opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"Group", "Score"}, d.ColumnNames())
	score, _ := d.Column("Score")
	assert.Equal(t, KindFloat, score.Kind)
	assert.Equal(t, []float64{10.5, 11}, score.Floats())

	opt = DefaultLoadOptions()
	opt.SheetIndex = 2
	d, err = Load(fs, "book.xlsx", opt)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())

	opt = DefaultLoadOptions()
	opt.SheetName = "missing"
	_, err = Load(fs, "book.xlsx", opt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: Sheet1, Readings")
}
