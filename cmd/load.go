package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/edaloom-cli/internal/dataset"
	"github.com/KaramelBytes/edaloom-cli/internal/eda"
	"github.com/KaramelBytes/edaloom-cli/internal/query"
	"github.com/spf13/cobra"
)

var (
	ldDelimiter  string
	ldDecimal    string
	ldThousands  string
	ldMaxRows    int
	ldSheetName  string
	ldSheetIndex int
	ldWorkers    int
)

func registerLoadFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVar(&ldDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (sniffed if omitted)")
	f.StringVar(&ldDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&ldThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	f.IntVar(&ldMaxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
	f.StringVar(&ldSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	f.IntVar(&ldSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.IntVar(&ldWorkers, "workers", 0, "columns analyzed concurrently (0 = config or CPU count)")
}

// loadOptions merges the load flags over the configured defaults.
func loadOptions() (dataset.LoadOptions, error) {
	s := settings()
	opt := dataset.DefaultLoadOptions()

	delim := firstNonEmpty(ldDelimiter, s.Delimiter)
	if delim != "" {
		r, err := parseDelimiter(delim)
		if err != nil {
			return opt, err
		}
		opt.Delimiter = r
	}
	switch strings.ToLower(strings.TrimSpace(firstNonEmpty(ldDecimal, s.DecimalSeparator))) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", ldDecimal)
	}
	switch strings.ToLower(firstNonEmpty(ldThousands, s.ThousandsSeparator)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", ldThousands)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("decimal and thousands separators must differ")
	}

	opt.MaxRows = s.MaxRows
	if ldMaxRows > 0 {
		opt.MaxRows = ldMaxRows
	}
	opt.SheetName = strings.TrimSpace(ldSheetName)
	if ldSheetIndex > 0 {
		opt.SheetIndex = ldSheetIndex
	}
	return opt, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

// openTools loads path and wraps it in a fresh analysis service.
func openTools(path string) (*query.Tools, error) {
	opt, err := loadOptions()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(appFs, path, opt)
	if err != nil {
		return nil, err
	}
	workers := settings().Workers
	if ldWorkers > 0 {
		workers = ldWorkers
	}
	svc := eda.NewService(ds, eda.WithLogger(logger), eda.WithWorkers(workers))
	logger.Debug("dataset loaded", "path", path, "rows", ds.Rows(), "columns", ds.Cols(), "session", svc.SessionID())
	return query.New(svc), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
