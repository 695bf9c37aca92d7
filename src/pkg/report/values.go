package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// strict strips every tag; a Policy is safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

/*
SanitizeName removes markup ERPNext puts into account and party names
(indent spans, links), decodes entities and collapses whitespace.
*/
func SanitizeName(name string) string {
	if name == "" {
		return ""
	}
	stripped := html.UnescapeString(strict.Sanitize(name))
	return strings.Join(strings.Fields(stripped), " ")
}

/*
toDecimal reads an ERP value as a number. Strings may carry thousands
separators ("1,250.50"). ok is false for nil, blanks and anything that does
not parse; the value is then zero.
*/
func toDecimal(value any) (d decimal.Decimal, ok bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		return parsed, err == nil
	case decimal.Decimal:
		return v, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if s == "" {
			return decimal.Zero, false
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return parsed, true
	case bool:
		if v {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	}
	return decimal.Zero, false
}

// number is toDecimal without the ok.
func number(value any) decimal.Decimal {
	d, _ := toDecimal(value)
	return d
}

func float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// text renders a cell as a string ("" for nil).
func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	}
	return fmt.Sprint(value)
}

func labels(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, text(value))
	}
	return out
}
