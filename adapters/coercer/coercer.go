package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumericCoercer converts raw cells to float64 with a zero fill for
// anything missing or unparseable.
type NumericCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// Lenient strips currency symbols, percent signs, thousands separators
	// and accounting parentheses before parsing. Strict mode accepts only
	// plain decimal or scientific notation.
	Lenient bool `json:"lenient"`

	// Fill replaces values that are missing or fail to parse.
	Fill float64 `json:"fill"`
}

// DefaultCoercionConfig returns strict parsing with a 0.0 fill
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		Lenient: false,
		Fill:    0,
	}
}

// NewNumericCoercer creates a coercer with the given config
func NewNumericCoercer(config CoercionConfig) *NumericCoercer {
	return &NumericCoercer{config: config}
}

// CoerceValue converts an arbitrary cell value to a number. nil, empty,
// non-numeric, NaN and infinite values all become the fill value.
func (c *NumericCoercer) CoerceValue(rawValue interface{}) float64 {
	switch v := rawValue.(type) {
	case nil:
		return c.config.Fill
	case float64:
		return c.finite(v)
	case float32:
		return c.finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if val, ok := c.Parse(v); ok {
			return val
		}
		return c.config.Fill
	default:
		if val, ok := c.Parse(fmt.Sprintf("%v", v)); ok {
			return val
		}
		return c.config.Fill
	}
}

// CoerceCell converts a table cell; present is false when the row had no
// cell for the column.
func (c *NumericCoercer) CoerceCell(raw string, present bool) float64 {
	if !present {
		return c.config.Fill
	}
	return c.CoerceValue(raw)
}

// Parse reports whether strVal is numeric under the configured rules.
func (c *NumericCoercer) Parse(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}
	if c.config.Lenient {
		cleanVal = normalizeNumeric(cleanVal)
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func (c *NumericCoercer) finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return c.config.Fill
	}
	return v
}

// normalizeNumeric handles international formats: parentheses for
// negatives, European decimals, currency symbols and percent signs.
func normalizeNumeric(cleanVal string) string {
	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the tail after the last comma is short
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && isDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// 1,234 is a thousands group; 12,5 is a decimal comma
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 == 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}
	return cleanVal
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
