package content

import "fmt"

// MissingFieldError reports a required frontmatter field that is absent or
// empty. The unit is rejected, never silently defaulted.
type MissingFieldError struct {
	Source string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required frontmatter field %q is missing or empty", e.Source, e.Field)
}

// MalformedDateError reports a date field that could not be parsed to at
// least day precision.
type MalformedDateError struct {
	Source string
	Value  string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("%s: cannot parse date value %q", e.Source, e.Value)
}
