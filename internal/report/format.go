package report

import (
	"fmt"
	"math"
	"strconv"
)

const (
	LocaleEN = "en"
	LocaleID = "id"
)

// formatLocaleFloat formats v with grouped thousands. The id locale uses a
// dot for thousands and a comma for decimals, en the reverse. When the
// fractional part is zero after rounding the decimals are omitted.
// Example (2 decimals): en 1234.5 => "1,234.50", id 1234.5 => "1.234,50".
func formatLocaleFloat(v float64, decimals int, locale string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	thousands, decimal := byte(','), "."
	if locale == LocaleID {
		thousands, decimal = '.', ","
	}

	neg := v < 0
	if neg {
		v = -v
	}

	if decimals < 0 {
		decimals = 0
	}

	// round to requested decimal places
	factor := int64(math.Pow(10, float64(decimals)))
	scaled := int64(math.Round(v * float64(factor)))
	intPart := scaled / factor
	fracPart := scaled % factor

	s := groupThousands(strconv.FormatInt(intPart, 10), thousands)

	prefix := ""
	if neg && scaled != 0 {
		prefix = "-"
	}

	if decimals == 0 || fracPart == 0 {
		return prefix + s
	}

	return fmt.Sprintf("%s%s%s%0*d", prefix, s, decimal, decimals, fracPart)
}

func groupThousands(s string, sep byte) string {
	if len(s) <= 3 {
		return s
	}
	var buf []byte
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		buf = append(buf, s[i])
		count++
		if count == 3 && i != 0 {
			buf = append(buf, sep)
			count = 0
		}
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// createFormatters returns the number formatter for table output and the
// plain one used by csv.
func createFormatters(opts Options) (tableFloat, plainFloat func(float64) string) {
	tableFloat = func(v float64) string {
		return formatLocaleFloat(v, opts.Precision, opts.Locale)
	}
	plainFloat = func(v float64) string {
		return strconv.FormatFloat(v, 'f', opts.Precision, 64)
	}
	return tableFloat, plainFloat
}
