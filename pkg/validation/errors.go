package validation

import "fmt"

// ErrorKind names the rule a ValidationError violates.
type ErrorKind string

const (
	KindMissingRequiredField            ErrorKind = "MissingRequiredField"
	KindUnknownField                    ErrorKind = "UnknownField"
	KindTypeMismatch                    ErrorKind = "TypeMismatch"
	KindFormatMismatch                  ErrorKind = "FormatMismatch"
	KindEnumMismatch                    ErrorKind = "EnumMismatch"
	KindRangeViolation                  ErrorKind = "RangeViolation"
	KindConditionalRequirementViolation ErrorKind = "ConditionalRequirementViolation"
)

// ErrorKinds lists every kind in a stable order.
var ErrorKinds = []ErrorKind{
	KindMissingRequiredField,
	KindUnknownField,
	KindTypeMismatch,
	KindFormatMismatch,
	KindEnumMismatch,
	KindRangeViolation,
	KindConditionalRequirementViolation,
}

// NoRecord is the Record index of errors produced in single-record mode.
const NoRecord = -1

// ValidationError describes one problem found in a record. Validation
// errors are data: they are returned in a Result, never as a Go error.
type ValidationError struct {
	// Field is the offending field identifier, empty for record-level errors.
	Field   string
	Kind    ErrorKind
	Message string
	// Triggers names the fields whose values fired a conditional rule.
	Triggers []string
	// Rule is the conditional rule or exclusive group name, if any.
	Rule string
	// Record is the index of the record in a batch, or NoRecord.
	Record int
}

// Error implements the error interface so a ValidationError can be
// wrapped or logged like any other error.
func (e ValidationError) Error() string {
	prefix := ""
	if e.Record != NoRecord {
		prefix = fmt.Sprintf("record %d: ", e.Record)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s%s: %s", prefix, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s%s: %s: %s", prefix, e.Field, e.Kind, e.Message)
}

// HasRecord reports whether the error carries a batch record index.
func (e ValidationError) HasRecord() bool {
	return e.Record != NoRecord
}

func newError(field string, kind ErrorKind, format string, args ...any) ValidationError {
	return ValidationError{
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Record:  NoRecord,
	}
}
