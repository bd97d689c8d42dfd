package validation

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/currency"

	"findatex-hq/regcheck/pkg/catalog"
)

const dateLayout = "2006-01-02"

// ValidateField checks one present value against its definition. It
// returns nil when the value is valid. Presence is not its concern: a
// missing required field is reported by the engine.
func ValidateField(def *catalog.FieldDefinition, raw any) []ValidationError {
	if raw == nil {
		return []ValidationError{newError(def.ID, KindTypeMismatch, "expected %s, got null", def.Kind)}
	}

	switch def.Kind {
	case catalog.KindString:
		return validateString(def, raw)
	case catalog.KindInteger:
		return validateNumber(def, raw, true)
	case catalog.KindNumber:
		return validateNumber(def, raw, false)
	case catalog.KindEnum:
		return validateEnum(def, raw)
	case catalog.KindIntegerEnum:
		return validateIntegerEnum(def, raw)
	case catalog.KindDate:
		return validateTime(def, raw, dateLayout, "YYYY-MM-DD date")
	case catalog.KindDateTime:
		return validateTime(def, raw, time.RFC3339, "RFC 3339 date-time")
	case catalog.KindCurrencyCode:
		return validateCurrency(def, raw)
	default:
		return []ValidationError{newError(def.ID, KindTypeMismatch, "field has unsupported type %q", def.Kind)}
	}
}

func typeMismatch(def *catalog.FieldDefinition, want string, raw any) []ValidationError {
	got := describe(raw)
	if q := quote(raw); q != "" {
		got += " " + q
	}
	return []ValidationError{newError(def.ID, KindTypeMismatch, "expected %s, got %s", want, got)}
}

func validateString(def *catalog.FieldDefinition, raw any) []ValidationError {
	s, ok := raw.(string)
	if !ok {
		return typeMismatch(def, "string", raw)
	}

	var errs []ValidationError
	length := utf8.RuneCountInString(s)
	if def.MinLength != nil && length < *def.MinLength {
		errs = append(errs, newError(def.ID, KindFormatMismatch,
			"length %d is shorter than minimum %d", length, *def.MinLength))
	}
	if def.MaxLength != nil && length > *def.MaxLength {
		errs = append(errs, newError(def.ID, KindFormatMismatch,
			"length %d exceeds maximum %d", length, *def.MaxLength))
	}
	if def.Pattern != nil && !def.Pattern.MatchString(s) {
		errs = append(errs, newError(def.ID, KindFormatMismatch,
			"value %q does not match pattern %s", s, def.Pattern))
	}
	return errs
}

func validateNumber(def *catalog.FieldDefinition, raw any, integral bool) []ValidationError {
	n, ok := toFloat64(raw)
	if !ok {
		if integral {
			return typeMismatch(def, "integer", raw)
		}
		return typeMismatch(def, "number", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return []ValidationError{newError(def.ID, KindTypeMismatch, "expected a finite number, got %v", n)}
	}
	if integral && n != math.Trunc(n) {
		return []ValidationError{newError(def.ID, KindTypeMismatch, "expected integer, got fractional value %v", n)}
	}
	return checkBounds(def, n)
}

func checkBounds(def *catalog.FieldDefinition, n float64) []ValidationError {
	if def.Min != nil && n < *def.Min {
		return []ValidationError{newError(def.ID, KindRangeViolation, "value %v is below minimum %v", n, *def.Min)}
	}
	if def.Max != nil && n > *def.Max {
		return []ValidationError{newError(def.ID, KindRangeViolation, "value %v is above maximum %v", n, *def.Max)}
	}
	return nil
}

func validateEnum(def *catalog.FieldDefinition, raw any) []ValidationError {
	s, ok := raw.(string)
	if !ok {
		return typeMismatch(def, "string", raw)
	}
	if !def.AllowsString(s) {
		return []ValidationError{newError(def.ID, KindEnumMismatch,
			"value %q is not one of %s", s, formatSet(def.Enum))}
	}
	return nil
}

func validateIntegerEnum(def *catalog.FieldDefinition, raw any) []ValidationError {
	n, ok := toFloat64(raw)
	if !ok {
		return typeMismatch(def, "integer", raw)
	}
	if n != math.Trunc(n) {
		return []ValidationError{newError(def.ID, KindTypeMismatch, "expected integer, got fractional value %v", n)}
	}
	if !def.AllowsNumber(n) {
		return []ValidationError{newError(def.ID, KindEnumMismatch,
			"value %v is not one of %s", n, formatSet(def.Enum))}
	}
	return checkBounds(def, n)
}

func validateTime(def *catalog.FieldDefinition, raw any, layout, what string) []ValidationError {
	s, ok := raw.(string)
	if !ok {
		return typeMismatch(def, what, raw)
	}
	if _, err := time.Parse(layout, s); err != nil {
		return []ValidationError{newError(def.ID, KindFormatMismatch, "value %q is not a valid %s", s, what)}
	}
	return nil
}

func validateCurrency(def *catalog.FieldDefinition, raw any) []ValidationError {
	s, ok := raw.(string)
	if !ok {
		return typeMismatch(def, "ISO 4217 currency code", raw)
	}
	if !isCurrencyCode(s) {
		return []ValidationError{newError(def.ID, KindEnumMismatch, "value %q is not an ISO 4217 code of a currency in circulation", s)}
	}
	return nil
}

// tenderCodes holds the ISO 4217 codes currently in use as legal tender in
// some region. Withdrawn codes such as DEM and fund or metal codes such as
// XAU are not in it.
var tenderCodes = sync.OnceValue(func() map[string]struct{} {
	codes := make(map[string]struct{})
	for it := currency.Query(); it.Next(); {
		codes[it.Unit().String()] = struct{}{}
	}
	return codes
})

// isCurrencyCode reports whether s is an upper-case ISO 4217 code of a
// currency in circulation.
func isCurrencyCode(s string) bool {
	_, ok := tenderCodes()[s]
	return ok
}

func formatSet(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func quote(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
