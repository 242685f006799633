package analysis

import (
	"errors"
	"fmt"
)

// ErrCredentialsMissing is returned by a pinner that has no credentials.
// The publisher turns it into a mock result instead of failing.
var ErrCredentialsMissing = errors.New("storage credentials are not configured")

// InvalidInputError reports malformed caller input. The pipeline never starts.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// SearchQueryError is a failure of a single search query. It is logged and
// the query's contribution dropped; it never fails the pipeline.
type SearchQueryError struct {
	Query string
	Err   error
}

func (e *SearchQueryError) Error() string {
	return fmt.Sprintf("search query %q failed: %v", e.Query, e.Err)
}

func (e *SearchQueryError) Unwrap() error { return e.Err }

// SummarizationError means the language model call failed outright
type SummarizationError struct {
	Op  string // "keywords", "summary" or "template"
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("language model %s call failed: %v", e.Op, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// TemplateParseError means the structured model response could not be parsed
type TemplateParseError struct {
	Raw string
	Err error
}

func (e *TemplateParseError) Error() string {
	return fmt.Sprintf("failed to parse template: %v", e.Err)
}

func (e *TemplateParseError) Unwrap() error { return e.Err }

// PublishError means the storage upload failed for a reason other than
// missing credentials. It is recorded in the report, not returned.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to upload to IPFS: %v", e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// StageError tags a fatal error with the pipeline stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsRetryable reports whether a fatal pipeline error is transient.
// Input and template errors need a different request, not a retry.
func IsRetryable(err error) bool {
	var summarization *SummarizationError
	return errors.As(err, &summarization)
}
