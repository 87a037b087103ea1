package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/edaloom-cli/internal/eda"
	"github.com/KaramelBytes/edaloom-cli/internal/query"
)

const titanicCSV = `name,age,fare,fare_x2,sex
a,22,7.25,14.5,male
b,38,71.28,142.56,female
c,26,7.92,15.84,female
d,35,53.1,106.2,female
e,,8.05,16.1,male
f,54,51.86,103.72,male
`

// setupCLI isolates HOME and swaps the command filesystem for memory.
func setupCLI(t *testing.T) afero.Fs {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	prev := appFs
	fs := afero.NewMemMapFs()
	appFs = fs
	t.Cleanup(func() { appFs = prev })
	require.NoError(t, afero.WriteFile(fs, "/data/titanic.csv", []byte(titanicCSV), 0o644))
	return fs
}

// resetFlags clears values and Changed state that persist between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func TestAnalyzeTextToStdout(t *testing.T) {
	setupCLI(t)
	out := runCmd(t, "analyze", "/data/titanic.csv")
	assert.Contains(t, out, "[DATASET METADATA]\nShape: 6 rows × 5 columns\n")
	assert.Contains(t, out, "[AUTOMATED INSIGHTS]")
	assert.Contains(t, out, "Strong correlation between 'fare' and 'fare_x2' (r=1.0)")
}

func TestAnalyzeJSONToFile(t *testing.T) {
	fs := setupCLI(t)
	out := runCmd(t, "analyze", "/data/titanic.csv", "--format", "json", "-o", "/data/report.json")
	assert.Contains(t, out, "✓ Wrote analysis to /data/report.json")

	b, err := afero.ReadFile(fs, "/data/report.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, float64(6), meta["row_count"])
	assert.Equal(t, "int", meta["dtypes"].(map[string]any)["age"])
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	setupCLI(t)
	_, err := execCmd("analyze", "/data/titanic.csv", "--format", "html")
	assert.ErrorContains(t, err, "unsupported --format")
}

func TestAnalyzeMissingFile(t *testing.T) {
	setupCLI(t)
	_, err := execCmd("analyze", "/data/absent.csv")
	assert.Error(t, err)
}

func TestAnalyzeBatchCollisionSuffix(t *testing.T) {
	fs := setupCLI(t)
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	require.NoError(t, afero.WriteFile(fs, "/in/d1/metrics.csv", []byte(csv), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/d2/metrics.csv", []byte(csv), 0o644))

	out := runCmd(t, "analyze-batch", "/in/d*/metrics.csv", "--output-dir", "/reports")
	assert.Contains(t, out, "[1/2] Processing metrics.csv...")
	assert.Contains(t, out, "[2/2] Processing metrics.csv...")
	assert.Contains(t, out, "writing to metrics__2.report.txt to avoid overwrite")

	for _, p := range []string{"/reports/metrics.report.txt", "/reports/metrics__2.report.txt"} {
		body, err := afero.ReadFile(fs, p)
		require.NoError(t, err, p)
		assert.Contains(t, string(body), "Shape: 3 rows × 2 columns")
	}
}

func TestAnalyzeBatchQuietYAML(t *testing.T) {
	fs := setupCLI(t)
	out := runCmd(t, "analyze-batch", "/data/titanic.csv", "--output-dir", "/reports", "--format", "yaml", "--quiet")
	assert.Empty(t, out)
	ok, err := afero.Exists(fs, "/reports/titanic.report.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAnalyzeBatchNoMatches(t *testing.T) {
	setupCLI(t)
	_, err := execCmd("analyze-batch", "/nothing/*.csv")
	assert.ErrorContains(t, err, "no input files matched")
}

func TestInspectionCommands(t *testing.T) {
	setupCLI(t)

	out := runCmd(t, "overview", "/data/titanic.csv")
	assert.Contains(t, out, "- Column Names: name, age, fare, fare_x2, sex\n")

	out = runCmd(t, "quality", "/data/titanic.csv")
	assert.Contains(t, out, "  - age: 1 missing (16.7%)\n")

	out = runCmd(t, "columns", "/data/titanic.csv")
	assert.Contains(t, out, "Dataset Columns (5):\n  1. name\n")

	out = runCmd(t, "column", "/data/titanic.csv", "sex")
	assert.Contains(t, out, "- Type: categorical\n")

	out = runCmd(t, "correlations", "/data/titanic.csv", "--threshold", "bogus")
	assert.Contains(t, out, "(|r| > 0.7)")
	assert.Contains(t, out, "fare ↔ fare_x2: r = 1.000")

	out = runCmd(t, "insights", "/data/titanic.csv")
	assert.Contains(t, out, "Recommendations:\n")

	out = runCmd(t, "compare", "/data/titanic.csv", "age,fare")
	assert.Contains(t, out, "age (numeric):\n")
	assert.Contains(t, out, "fare (numeric):\n")

	out = runCmd(t, "viz", "/data/titanic.csv", "sex")
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "categorical", v["type"])
}

func TestInspectionErrors(t *testing.T) {
	setupCLI(t)

	_, err := execCmd("column", "/data/titanic.csv", "cabin")
	assert.True(t, errors.Is(err, eda.ErrColumnNotFound))

	_, err = execCmd("compare", "/data/titanic.csv", "age,cabin")
	var inv *query.InvalidColumnsError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, []string{"cabin"}, inv.Invalid)

	_, err = execCmd("overview", "/data/titanic.csv", "--delimiter", "#")
	assert.ErrorContains(t, err, "unsupported --delimiter")
}

func TestConfigSetDrivesDefaults(t *testing.T) {
	setupCLI(t)

	runCmd(t, "config", "set", "report_format", "json")
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "report_format: json\n")

	out = runCmd(t, "analyze", "/data/titanic.csv")
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	_, err := execCmd("config", "set", "log_level", "loud")
	assert.Error(t, err)
}

func TestAnalyzeXLSXSheetByName(t *testing.T) {
	fs := setupCLI(t)

	f := excelize.NewFile()
	_, err := f.NewSheet("Readings")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Readings", "A1", &[]any{"sensor", "value"}))
	require.NoError(t, f.SetSheetRow("Readings", "A2", &[]any{"s1", 1.5}))
	require.NoError(t, f.SetSheetRow("Readings", "A3", &[]any{"s2", 2.5}))
	w, err := fs.Create("/data/book.xlsx")
	require.NoError(t, err)
	require.NoError(t, f.Write(w))
	require.NoError(t, w.Close())

	out := runCmd(t, "columns", "/data/book.xlsx", "--sheet-name", "readings")
	assert.Equal(t, "Dataset Columns (2):\n  1. sensor\n  2. value\n", out)

	_, err = execCmd("columns", "/data/book.xlsx", "--sheet-name", "Missing")
	assert.ErrorContains(t, err, "Available sheets")
}
