package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SerialEpochOffset is the number of days from 1899-12-30, the spreadsheet
// day-serial epoch, to 1970-01-01.
const SerialEpochOffset = 25569

const (
	// values above this are read as date serials (after ~1902)
	minDateSerial = 1000
	msPerDay      = 86400 * 1000
	maxEpochMs    = 8.64e15
)

// serialValue reports whether v is a finite number or a string holding one.
func serialValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeDateCell converts a Date cell to YYYY-MM-DD. Numeric values
// above 1000 are day serials; anything else passes through as trimmed text.
func NormalizeDateCell(v any) string {
	if n, ok := serialValue(v); ok && n > minDateSerial {
		ms := (n - SerialEpochOffset) * msPerDay
		if math.Abs(ms) <= maxEpochMs {
			return time.UnixMilli(int64(ms)).UTC().Format("2006-01-02")
		}
		return ""
	}
	return CellString(v)
}

// NormalizeTimeCell converts a Time cell to HH:MM. Numeric values in
// [0,1) are fractions of a day; anything else passes through as trimmed text.
func NormalizeTimeCell(v any) string {
	if n, ok := serialValue(v); ok && n >= 0 && n < 1 {
		total := int(math.Floor(n*24*60 + 0.5))
		return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60)
	}
	return CellString(v)
}

// CellString renders a cell value as trimmed text.
func CellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// cellAmount reads a numeric cell; unreadable values count as zero.
func cellAmount(v any) float64 {
	n, ok := serialValue(v)
	if !ok {
		return 0
	}
	return n
}
