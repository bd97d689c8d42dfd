package catalog

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"findatex-hq/regcheck/pkg/schema/ast"
)

// literalProblem reports why a rule literal can never equal a value of
// field d, or "" when it can. Kind, enumeration and format are checked
// always; bounds, pattern and length only when strict is set, since a
// trigger may legitimately compare against an out-of-range value.
func (d *FieldDefinition) literalProblem(v *ast.ValueNode, strict bool) string {
	if v == nil || v.Type == ast.ValueTypeNull {
		return "null never matches a present value"
	}

	switch d.Kind {
	case KindString:
		s, ok := v.Value.(string)
		if !ok {
			return fmt.Sprintf("%s %s is not a string", v.Type, v)
		}
		if strict {
			return d.stringProblem(s)
		}
	case KindEnum:
		s, ok := v.Value.(string)
		if !ok {
			return fmt.Sprintf("%s %s is not a string", v.Type, v)
		}
		if !d.AllowsString(s) {
			return fmt.Sprintf("%q is not one of the field's values", s)
		}
	case KindInteger, KindNumber, KindIntegerEnum:
		n, ok := v.Value.(float64)
		if !ok {
			return fmt.Sprintf("%s %q is not a number", v.Type, v)
		}
		if d.Kind != KindNumber && n != math.Trunc(n) {
			return fmt.Sprintf("%v is not an integer", n)
		}
		if d.Kind == KindIntegerEnum && !d.AllowsNumber(n) {
			return fmt.Sprintf("%v is not one of the field's values", n)
		}
		if strict {
			return d.boundsProblem(n)
		}
	case KindDate, KindDateTime:
		s, ok := v.Value.(string)
		if !ok {
			return fmt.Sprintf("%s %s is not a string", v.Type, v)
		}
		layout := time.DateOnly
		if d.Kind == KindDateTime {
			layout = time.RFC3339
		}
		if _, err := time.Parse(layout, s); err != nil {
			return fmt.Sprintf("%q is not a valid %s", s, d.Kind)
		}
	case KindCurrencyCode:
		s, ok := v.Value.(string)
		if !ok {
			return fmt.Sprintf("%s %s is not a string", v.Type, v)
		}
		if !isCodeShape(s) {
			return fmt.Sprintf("%q is not a three-letter upper-case currency code", s)
		}
	}
	return ""
}

func (d *FieldDefinition) stringProblem(s string) string {
	length := utf8.RuneCountInString(s)
	switch {
	case d.MinLength != nil && length < *d.MinLength:
		return fmt.Sprintf("%q is shorter than min_length %d", s, *d.MinLength)
	case d.MaxLength != nil && length > *d.MaxLength:
		return fmt.Sprintf("%q is longer than max_length %d", s, *d.MaxLength)
	case d.Pattern != nil && !d.Pattern.MatchString(s):
		return fmt.Sprintf("%q does not match pattern %s", s, d.Pattern)
	}
	return ""
}

func (d *FieldDefinition) boundsProblem(n float64) string {
	switch {
	case d.Min != nil && n < *d.Min:
		return fmt.Sprintf("%v is below min %v", n, *d.Min)
	case d.Max != nil && n > *d.Max:
		return fmt.Sprintf("%v is above max %v", n, *d.Max)
	}
	return ""
}

func isCodeShape(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
