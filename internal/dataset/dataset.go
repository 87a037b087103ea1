package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared storage type of a column.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindCategory
	KindTime
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindCategory:
		return "category"
	case KindTime:
		return "datetime"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this kind carry a numeric payload.
// Booleans and durations count as numeric storage, timestamps do not.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindFloat, KindBool, KindDuration:
		return true
	}
	return false
}

// IsTextual reports whether values of this kind carry a text payload.
func (k Kind) IsTextual() bool { return k == KindString || k == KindCategory }

var (
	ErrRaggedColumns   = errors.New("columns have different lengths")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Value is a single cell. Num holds int, float, bool (0/1) and duration (ns)
// payloads; Str holds text; Time holds timestamps.
type Value struct {
	Num     float64
	Str     string
	Time    time.Time
	Missing bool
}

// Null returns a missing cell.
func Null() Value { return Value{Missing: true} }

// Float returns a numeric cell. NaN is treated as missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{Num: f}
}

func Int(i int64) Value { return Value{Num: float64(i)} }

func Bool(b bool) Value {
	if b {
		return Value{Num: 1}
	}
	return Value{Num: 0}
}

func Text(s string) Value { return Value{Str: s} }

// Time returns a timestamp cell. The zero time is treated as missing.
func Time(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Value{Time: t}
}

func Duration(d time.Duration) Value { return Value{Num: float64(d)} }

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn builds a column from cells.
func NewColumn(name string, kind Kind, values ...Value) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// Floats builds a float column; NaN entries become missing cells.
func Floats(name string, vals ...float64) *Column {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Float(v)
	}
	return NewColumn(name, KindFloat, out...)
}

// Strings builds a string column; empty strings become missing cells.
func Strings(name string, vals ...string) *Column {
	out := make([]Value, len(vals))
	for i, v := range vals {
		if v == "" {
			out[i] = Null()
			continue
		}
		out[i] = Text(v)
	}
	return NewColumn(name, KindString, out...)
}

// Times builds a datetime column; zero times become missing cells.
func Times(name string, vals ...time.Time) *Column {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = Time(v)
	}
	return NewColumn(name, KindTime, out...)
}

func (c *Column) Len() int { return len(c.Values) }

func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric payloads in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// Times returns the non-missing timestamps in row order.
func (c *Column) Times() []time.Time {
	out := make([]time.Time, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Time)
		}
	}
	return out
}

// Key returns a string that is equal for equal cells of this column.
func (c *Column) Key(i int) string {
	v := c.Values[i]
	if v.Missing {
		return "\x00"
	}
	switch {
	case c.Kind == KindTime:
		return strconv.FormatInt(v.Time.UnixNano(), 10)
	case c.Kind.IsNumeric():
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}

// Label returns the display form of a cell; missing cells render as "".
func (c *Column) Label(i int) string {
	v := c.Values[i]
	if v.Missing {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Num), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Num != 0)
	case KindDuration:
		return time.Duration(v.Num).String()
	case KindTime:
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return v.Str
	}
}

// UniqueCount returns the number of distinct non-missing values.
func (c *Column) UniqueCount() int {
	seen := make(map[string]struct{}, len(c.Values))
	for i, v := range c.Values {
		if v.Missing {
			continue
		}
		seen[c.Key(i)] = struct{}{}
	}
	return len(seen)
}

// ValueCount is one distinct value and how often it occurs.
type ValueCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// ValueCounts returns distinct non-missing values ordered by descending
// count; equal counts are ordered by ascending label.
func (c *Column) ValueCounts() []ValueCount {
	idx := make(map[string]int)
	var out []ValueCount
	for i, v := range c.Values {
		if v.Missing {
			continue
		}
		k := c.Key(i)
		if j, ok := idx[k]; ok {
			out[j].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, ValueCount{Value: c.Label(i), Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Dataset is an immutable, rectangular collection of named columns.
type Dataset struct {
	Name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// New validates and assembles a dataset. All columns must have the same
// length and distinct names.
func New(name string, cols ...*Column) (*Dataset, error) {
	d := &Dataset{Name: name, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, ok := d.index[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedColumns, c.Name, c.Len(), d.rows)
		}
		d.index[c.Name] = i
	}
	d.columns = append([]*Column(nil), cols...)
	return d, nil
}

func (d *Dataset) Rows() int { return d.rows }

func (d *Dataset) Cols() int { return len(d.columns) }

// Columns returns the columns in dataset order.
func (d *Dataset) Columns() []*Column { return append([]*Column(nil), d.columns...) }

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// RowKey returns a key that is equal exactly for rows whose cells are all
// equal. Missing cells compare equal to each other and to nothing else. Each
// present cell is length-prefixed so no cell content can mimic a boundary.
func (d *Dataset) RowKey(row int) string {
	var b strings.Builder
	for _, c := range d.columns {
		if c.Values[row].Missing {
			b.WriteByte('-')
			continue
		}
		k := c.Key(row)
		b.WriteByte('+')
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// MemoryUsage estimates the in-memory footprint of the cell payloads in bytes.
func (d *Dataset) MemoryUsage() int64 {
	var total int64
	for _, c := range d.columns {
		switch {
		case c.Kind == KindBool:
			total += int64(c.Len())
		case c.Kind.IsTextual():
			for _, v := range c.Values {
				total += 16 + int64(len(v.Str))
			}
		default:
			total += 8 * int64(c.Len())
		}
	}
	return total
}
