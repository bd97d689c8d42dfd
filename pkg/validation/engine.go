package validation

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"findatex-hq/regcheck/pkg/catalog"
)

// Record maps field identifiers to raw values as produced by a reader:
// string, float64 (or any Go numeric type), bool, nil, or nested values.
type Record = map[string]any

// Subject is what one validation call checks: a single record or an
// ordered batch of independent records.
type Subject struct {
	Records []Record
	Batch   bool
}

// Single wraps one record.
func Single(record Record) Subject {
	return Subject{Records: []Record{record}}
}

// Batch wraps an ordered sequence of records.
func Batch(records []Record) Subject {
	return Subject{Records: records, Batch: true}
}

// Len returns the number of records in the subject.
func (s Subject) Len() int {
	return len(s.Records)
}

// Option configures a validation call.
type Option func(*options)

type options struct {
	strict  bool
	workers int
}

// WithStrict reports undeclared fields as UnknownField errors. The
// default is permissive: producers may add metadata fields and templates
// gain fields between versions.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithWorkers validates batch records on up to n goroutines. Values below
// two validate sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Validator binds a catalog to a set of options. It holds no per-call
// state and may be shared across goroutines.
type Validator struct {
	catalog *catalog.Catalog
	opts    options

	fields   []*catalog.FieldDefinition
	required []*catalog.FieldDefinition
	rules    []*catalog.Rule
	groups   []*catalog.Group
}

// NewValidator creates a Validator for cat.
func NewValidator(cat *catalog.Catalog, opts ...Option) *Validator {
	v := &Validator{
		catalog:  cat,
		fields:   cat.Fields(),
		required: cat.Required(),
		rules:    cat.Rules(),
		groups:   cat.Groups(),
	}
	for _, opt := range opts {
		opt(&v.opts)
	}
	return v
}

// Catalog returns the catalog the validator checks against.
func (v *Validator) Catalog() *catalog.Catalog {
	return v.catalog
}

// Strict reports whether undeclared fields are errors.
func (v *Validator) Strict() bool {
	return v.opts.strict
}

// Validate checks cat against subject with the given options.
func Validate(cat *catalog.Catalog, subject Subject, opts ...Option) *Result {
	return NewValidator(cat, opts...).Validate(subject)
}

// ValidateRecord checks a single record.
func ValidateRecord(cat *catalog.Catalog, record Record, opts ...Option) *Result {
	return Validate(cat, Single(record), opts...)
}

// Validate checks every record of subject. All checks always run so that
// one call surfaces every problem. Records are reported in input order and
// each record's errors in evaluation order, whether or not the batch is
// validated in parallel.
func (v *Validator) Validate(subject Subject) *Result {
	perRecord := make([][]ValidationError, len(subject.Records))

	if v.opts.workers > 1 && len(subject.Records) > 1 {
		var g errgroup.Group
		g.SetLimit(v.opts.workers)
		for i, record := range subject.Records {
			g.Go(func() error {
				perRecord[i] = v.validateRecord(record, recordIndex(subject, i))
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, record := range subject.Records {
			perRecord[i] = v.validateRecord(record, recordIndex(subject, i))
		}
	}

	result := &Result{
		Batch:   subject.Batch,
		Records: len(subject.Records),
	}
	for _, errs := range perRecord {
		result.Errors = append(result.Errors, errs...)
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func recordIndex(subject Subject, i int) int {
	if subject.Batch {
		return i
	}
	return NoRecord
}

// validateRecord runs the four checks over one record.
func (v *Validator) validateRecord(record Record, index int) []ValidationError {
	c := &collector{record: index}

	// Required fields.
	for _, def := range v.required {
		if _, ok := record[def.ID]; !ok {
			c.add(newError(def.ID, KindMissingRequiredField, "required field is missing"))
		}
	}

	// Undeclared fields, in a stable order.
	if v.opts.strict {
		var unknown []string
		for key := range record {
			if !v.catalog.Has(key) {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			c.add(newError(key, KindUnknownField, "field is not declared in catalog %s", v.catalog.Name()))
		}
	}

	// Per-field checks.
	for _, def := range v.fields {
		if raw, ok := record[def.ID]; ok {
			c.add(ValidateField(def, raw)...)
		}
	}

	// Cross-field rules, then exclusive groups.
	for _, rule := range v.rules {
		c.add(EvaluateRule(rule, record)...)
	}
	for _, group := range v.groups {
		c.add(EvaluateGroup(group, record)...)
	}

	return c.errs
}

// collector accumulates the errors of one record.
type collector struct {
	record int
	errs   []ValidationError
}

func (c *collector) add(errs ...ValidationError) {
	for _, e := range errs {
		e.Record = c.record
		c.errs = append(c.errs, e)
	}
}
