package forms

import (
	"errors"
	"fmt"
	"html/template"
	"strconv"
)

// Validation error codes.
const (
	CodeRequired       = "required"
	CodeList           = "list"
	CodeInvalidPKValue = "invalid_pk_value"
	CodeInvalidChoice  = "invalid_choice"
	CodeInvalid        = "invalid"
	CodeMaxLength      = "max_length"
)

// ValidationError is a user-facing form error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CleanOutcome tells how a thumbs value passed cleaning.
type CleanOutcome int

const (
	// CleanValidated means every value named a thumb of the candidate set.
	CleanValidated CleanOutcome = iota
	// CleanSkippedInvalidChoice means choice validation failed and was
	// skipped; the submitted values pass through.
	CleanSkippedInvalidChoice
)

// CleanResult is the outcome of ThumbSelectField.Clean.
type CleanResult struct {
	Outcome CleanOutcome
	// Values are the submitted values as strings.
	Values []string
	// IDs are the values that parse as thumb IDs, in submitted order.
	IDs []int64
	// Skipped holds the suppressed error for CleanSkippedInvalidChoice.
	Skipped *ValidationError
}

// ThumbSelectField is a multiple-choice field over the thumbs of one image
// row.
type ThumbSelectField struct {
	Required   bool
	Candidates CandidateSet
	Widget     *ThumbSelectWidget

	store CandidateStore
}

// NewThumbSelectField returns an optional field over candidates.
func NewThumbSelectField(st Store, candidates CandidateSet) *ThumbSelectField {
	return &ThumbSelectField{
		Candidates: candidates,
		Widget:     NewThumbSelectWidget(st),
		store:      st,
	}
}

// Choices lists the candidate thumbs as options labelled by size name.
func (f *ThumbSelectField) Choices() ([]Choice, error) {
	thumbs, err := f.Candidates.Thumbs(f.store)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, len(thumbs))
	for i, t := range thumbs {
		choices[i] = Choice{Value: strconv.FormatInt(t.ID, 10), Label: t.Name}
	}
	return choices, nil
}

// Render renders the select box with values selected.
func (f *ThumbSelectField) Render(name string, values []string, attrs map[string]string) (template.HTML, error) {
	choices, err := f.Choices()
	if err != nil {
		return "", err
	}
	return f.Widget.Render(name, values, attrs, choices), nil
}

// Clean validates a submitted value. A missing required value and a value
// that is not a list are errors. Any other failure, such as an ID outside
// the candidate set, is reported as CleanSkippedInvalidChoice: the
// candidate set is narrower than what a user may legitimately submit.
// Non-validation errors, e.g. from the store, are returned as is.
func (f *ThumbSelectField) Clean(value interface{}) (CleanResult, error) {
	values, verr := toStringList(value)
	if verr == nil && len(values) == 0 && f.Required {
		verr = newValidationError(CodeRequired, "This field is required.")
	}
	if verr != nil {
		return CleanResult{}, verr
	}

	ids, parsed := parseIDs(values)
	result := CleanResult{Outcome: CleanValidated, Values: values, IDs: ids}
	if len(values) == 0 {
		return result, nil
	}

	if err := f.checkChoices(values, parsed); err != nil {
		var skipped *ValidationError
		if !errors.As(err, &skipped) {
			return CleanResult{}, err
		}
		result.Outcome = CleanSkippedInvalidChoice
		result.Skipped = skipped
	}
	return result, nil
}

// checkChoices returns a *ValidationError for the first value that is not a
// valid ID or not in the candidate set, or a plain error from the store.
func (f *ThumbSelectField) checkChoices(values []string, parsed []bool) error {
	for i, v := range values {
		if !parsed[i] {
			return newValidationError(CodeInvalidPKValue, "%q is not a valid value for a primary key.", v)
		}
	}
	ids, err := f.Candidates.ThumbIDs(f.store)
	if err != nil {
		return fmt.Errorf("failed to resolve thumb choices: %w", err)
	}
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[strconv.FormatInt(id, 10)] = true
	}
	for _, v := range values {
		if !allowed[v] {
			return newValidationError(CodeInvalidChoice, "Select a valid choice. %s is not one of the available choices.", v)
		}
	}
	return nil
}

// toStringList normalises a submitted value. nil and "" are empty; slices
// of strings or integers are lists; anything else is not a list.
func toStringList(value interface{}) ([]string, *ValidationError) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
	case []string:
		return v, nil
	case []int64:
		out := make([]string, len(v))
		for i, id := range v {
			out[i] = strconv.FormatInt(id, 10)
		}
		return out, nil
	case []int:
		out := make([]string, len(v))
		for i, id := range v {
			out[i] = strconv.Itoa(id)
		}
		return out, nil
	}
	return nil, newValidationError(CodeList, "Enter a list of values.")
}

// parseIDs returns the values that parse as integers and, per value,
// whether it parsed.
func parseIDs(values []string) ([]int64, []bool) {
	ids := make([]int64, 0, len(values))
	parsed := make([]bool, len(values))
	for i, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		parsed[i] = true
	}
	return ids, parsed
}
