package validation

// Result is the outcome of one validation call.
type Result struct {
	Valid bool
	// Errors in evaluation order, records in input order.
	Errors []ValidationError
	// Records is the number of records checked.
	Records int
	// Batch is true when the subject was a batch; errors then carry
	// record indexes.
	Batch bool
}

// Count returns the number of errors.
func (r *Result) Count() int {
	return len(r.Errors)
}

// ByKind returns the errors of the given kind.
func (r *Result) ByKind(kind ErrorKind) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ByField returns the errors reported against field.
func (r *Result) ByField(field string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// ForRecord returns the errors of the batch record at index.
func (r *Result) ForRecord(index int) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Record == index {
			out = append(out, e)
		}
	}
	return out
}

// HasKind reports whether any error has the given kind.
func (r *Result) HasKind(kind ErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// KindCounts returns the number of errors per kind. Kinds without errors
// are omitted.
func (r *Result) KindCounts() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, e := range r.Errors {
		counts[e.Kind]++
	}
	return counts
}

// InvalidRecords returns the number of records with at least one error.
func (r *Result) InvalidRecords() int {
	if !r.Batch {
		if r.Valid {
			return 0
		}
		return 1
	}
	seen := make(map[int]bool)
	for _, e := range r.Errors {
		seen[e.Record] = true
	}
	return len(seen)
}
