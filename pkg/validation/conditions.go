package validation

import (
	"strings"

	"findatex-hq/regcheck/pkg/catalog"
	"findatex-hq/regcheck/pkg/schema/ast"
)

// EvaluateRule applies one conditional rule to a record. A rule whose
// trigger field is absent (or null) is skipped without error; the
// trigger's own absence is the concern of the required-field check.
func EvaluateRule(rule *catalog.Rule, record Record) []ValidationError {
	actual, ok := record[rule.Trigger.Field]
	if !ok || actual == nil {
		return nil
	}

	fired, err := evaluateOperator(rule.Trigger.Operator, actual, rule.Trigger.Value)
	if err != nil || !fired {
		// A trigger value of the wrong shape cannot fire; its field
		// validator reports the type problem.
		return nil
	}

	value, present := record[rule.Field]
	present = present && !isEmpty(value)

	switch rule.Requirement {
	case ast.RequirementRequired:
		if present {
			return nil
		}
		return []ValidationError{conditionalError(rule,
			"field is required when %s", describeTrigger(rule.Trigger))}

	case ast.RequirementForbidden:
		if !present {
			return nil
		}
		return []ValidationError{conditionalError(rule,
			"field must be absent when %s", describeTrigger(rule.Trigger))}

	case ast.RequirementEquals:
		if present && evaluateEqual(value, rule.Value) {
			return nil
		}
		if !present {
			return []ValidationError{conditionalError(rule,
				"field must equal %s when %s, but is missing", formatValue(rule.Value), describeTrigger(rule.Trigger))}
		}
		return []ValidationError{conditionalError(rule,
			"field must equal %s when %s, got %s", formatValue(rule.Value), describeTrigger(rule.Trigger), formatValue(value))}
	}
	return nil
}

// EvaluateGroup applies an exclusive group: at most one member may be
// present. Every member present after the first is reported, naming the
// members present before it.
func EvaluateGroup(group *catalog.Group, record Record) []ValidationError {
	var errs []ValidationError
	var seen []string
	for _, id := range group.Fields {
		value, ok := record[id]
		if !ok || isEmpty(value) {
			continue
		}
		if len(seen) > 0 {
			e := newError(id, KindConditionalRequirementViolation,
				"field is mutually exclusive with %s (group %s)", strings.Join(seen, ", "), group.Name)
			e.Triggers = append([]string(nil), seen...)
			e.Rule = group.Name
			errs = append(errs, e)
		}
		seen = append(seen, id)
	}
	return errs
}

func conditionalError(rule *catalog.Rule, format string, args ...any) ValidationError {
	e := newError(rule.Field, KindConditionalRequirementViolation, format, args...)
	e.Triggers = []string{rule.Trigger.Field}
	e.Rule = rule.Name
	return e
}

func describeTrigger(t catalog.Trigger) string {
	if t.Operator == ast.OperatorPresent {
		return t.Field + " is present"
	}
	return t.Field + " " + string(t.Operator) + " " + formatValue(t.Value)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []any:
		return formatSet(val)
	case nil:
		return "null"
	default:
		if q := quote(val); q != "" {
			return q
		}
		return describe(val)
	}
}

// isEmpty reports whether a present value counts as not supplied.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
