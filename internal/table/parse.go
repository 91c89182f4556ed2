package table

import (
	"strconv"
	"strings"
	"time"
)

// DefaultNullValues are the cell tokens treated as missing when
// Options.NullValues is nil.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Options controls how raw records are turned into a Table.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv names and ',' otherwise.
	Delimiter rune
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// NullValues replaces DefaultNullValues when non-nil. The empty string
	// is always null.
	NullValues []string
	// DecimalSeparator defaults to '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped from numbers when set.
	ThousandsSeparator rune
	// SheetName selects an XLSX sheet by name.
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

func (o Options) nullSet() map[string]struct{} {
	vals := o.NullValues
	if vals == nil {
		vals = DefaultNullValues
	}
	set := make(map[string]struct{}, len(vals)+1)
	set[""] = struct{}{}
	for _, v := range vals {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return set
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if raw == "" || strings.ContainsAny(raw, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isBool(s string) bool {
	switch s {
	case "True", "False", "TRUE", "FALSE", "true", "false":
		return true
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"2006-01-02T15:04:05",
}

func isDatetime(s string) bool {
	for _, l := range timeLayouts {
		if _, err := time.Parse(l, s); err == nil {
			return true
		}
	}
	return false
}
