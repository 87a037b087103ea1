package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var ErrNoHeader = errors.New("file has no header row")

// LoadOptions controls how delimited files and workbooks are read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// NAValues are cell texts treated as missing (compared case-insensitively).
	NAValues []string
	// XLSX sheet selection: name wins over 1-based index.
	SheetName  string
	SheetIndex int
}

// DefaultLoadOptions returns reasonable defaults for dataset loading.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MaxRows:    0,
		SheetIndex: 1,
		NAValues:   []string{"", "na", "n/a", "nan", "null", "none", "-nan", "#n/a", "<na>"},
	}
}

// Load reads a dataset from path, dispatching on the file extension.
func Load(fs afero.Fs, path string, opt LoadOptions) (*Dataset, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return LoadXLSX(fs, path, opt)
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return ReadCSV(f, filepath.Base(path), opt)
}

// ReadCSV reads a header row followed by data rows.
func ReadCSV(r io.Reader, name string, opt LoadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return FromRecords(name, header, rows, opt)
}

// FromRecords infers a kind per column and builds a dataset from raw text
// records. Short rows are padded with missing cells.
func FromRecords(name string, header []string, rows [][]string, opt LoadOptions) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	na := make(map[string]struct{}, len(opt.NAValues))
	for _, v := range opt.NAValues {
		na[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	cols := make([]*Column, len(header))
	seen := make(map[string]int, len(header))
	for j := range header {
		colName := strings.TrimSpace(header[j])
		if colName == "" {
			colName = fmt.Sprintf("column_%d", j+1)
		}
		if n := seen[colName]; n > 0 {
			seen[colName] = n + 1
			colName = fmt.Sprintf("%s.%d", colName, n)
		} else {
			seen[colName] = 1
		}
		raw := make([]string, len(rows))
		missing := make([]bool, len(rows))
		for i, rec := range rows {
			if j >= len(rec) {
				missing[i] = true
				continue
			}
			v := strings.TrimSpace(rec[j])
			if _, ok := na[strings.ToLower(v)]; ok || v == "" {
				missing[i] = true
				continue
			}
			raw[i] = v
		}
		cols[j] = inferColumn(colName, raw, missing, opt)
	}
	return New(name, cols...)
}

// inferColumn picks the narrowest kind that every non-missing cell parses as:
// bool, int, float, datetime, then string. All-missing columns are float.
func inferColumn(name string, raw []string, missing []bool, opt LoadOptions) *Column {
	kinds := []Kind{KindBool, KindInt, KindFloat, KindTime}
	for _, k := range kinds {
		vals, ok := parseAll(raw, missing, k, opt)
		if ok {
			return NewColumn(name, k, vals...)
		}
	}
	vals := make([]Value, len(raw))
	for i, v := range raw {
		if missing[i] {
			vals[i] = Null()
			continue
		}
		vals[i] = Text(v)
	}
	return NewColumn(name, KindString, vals...)
}

func parseAll(raw []string, missing []bool, k Kind, opt LoadOptions) ([]Value, bool) {
	vals := make([]Value, len(raw))
	present := 0
	for i, s := range raw {
		if missing[i] {
			vals[i] = Null()
			continue
		}
		present++
		switch k {
		case KindBool:
			b, ok := parseBool(s)
			if !ok {
				return nil, false
			}
			vals[i] = Bool(b)
		case KindInt:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, false
			}
			vals[i] = Int(n)
		case KindFloat:
			f, ok := parseNumeric(s, opt)
			if !ok {
				return nil, false
			}
			vals[i] = Float(f)
		case KindTime:
			t, ok := parseTimeMaybe(s)
			if !ok {
				return nil, false
			}
			vals[i] = Time(t)
		}
	}
	if present == 0 && k != KindFloat {
		return nil, false
	}
	return vals, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if lower == "inf" || lower == "-inf" || lower == "+inf" || lower == "infinity" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
