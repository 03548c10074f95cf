package booking

import "strings"

// ValidationResult accumulates business-rule violations in the order they
// were detected. Validity is derived from the error list, so IsValid and
// HasErrors can never disagree.
type ValidationResult struct {
	errors []string
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

// AddError appends an error message and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.errors = append(r.errors, msg)
}

// AddErrors appends a batch of error messages. A nil or empty batch is a no-op.
func (r *ValidationResult) AddErrors(msgs []string) {
	if len(msgs) == 0 {
		return
	}
	r.errors = append(r.errors, msgs...)
}

// Merge imports another result's errors if that result is invalid.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil || other.IsValid() {
		return
	}
	r.AddErrors(other.errors)
}

// IsValid reports whether no errors have been recorded.
func (r *ValidationResult) IsValid() bool {
	return len(r.errors) == 0
}

// HasErrors is the negation of IsValid.
func (r *ValidationResult) HasErrors() bool {
	return !r.IsValid()
}

// Errors returns the recorded messages in insertion order. The returned slice
// is a copy; mutating it does not affect the result.
func (r *ValidationResult) Errors() []string {
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r *ValidationResult) String() string {
	if r.IsValid() {
		return "Validation successful"
	}
	return strings.Join(r.errors, "; ")
}
