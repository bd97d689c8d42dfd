package catalog

// Kind is the declared type of a field. The set is closed: every consumer
// switches over all of Kinds.
type Kind string

const (
	KindString       Kind = "string"
	KindInteger      Kind = "integer"
	KindNumber       Kind = "number"
	KindEnum         Kind = "enum"         // Enumeration of strings
	KindIntegerEnum  Kind = "integer-enum" // Enumeration of integers
	KindDate         Kind = "date"         // YYYY-MM-DD
	KindDateTime     Kind = "date-time"    // RFC 3339
	KindCurrencyCode Kind = "currency-code"
)

// Kinds lists every supported field kind.
var Kinds = []Kind{
	KindString,
	KindInteger,
	KindNumber,
	KindEnum,
	KindIntegerEnum,
	KindDate,
	KindDateTime,
	KindCurrencyCode,
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsEnum reports whether the kind carries an enumeration.
func (k Kind) IsEnum() bool {
	return k == KindEnum || k == KindIntegerEnum
}

// IsNumeric reports whether values of the kind are numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindNumber || k == KindIntegerEnum
}

func kindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}
