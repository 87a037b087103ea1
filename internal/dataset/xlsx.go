package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet of a workbook. The first row is the header.
// If opt.SheetName is empty, opt.SheetIndex (1-based) selects the sheet.
func LoadXLSX(fs afero.Fs, path string, opt LoadOptions) (*Dataset, error) {
	r, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer r.Close()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet, err := pickSheet(sheets, opt.SheetName, opt.SheetIndex, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNoHeader
	}
	data := rows[1:]
	if opt.MaxRows > 0 && len(data) > opt.MaxRows {
		data = data[:opt.MaxRows]
	}
	return FromRecords(filepath.Base(path), rows[0], data, opt)
}

func pickSheet(sheets []string, name string, index int, file string) (string, error) {
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, file, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range for workbook '%s' (%d sheets)", index, file, len(sheets))
	}
	return sheets[index-1], nil
}
