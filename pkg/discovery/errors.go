package discovery

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a keyword that cannot be compiled. It is only
// produced while a Filter is being built, never at match time.
type ConfigurationError struct {
	Keyword string
	Class   KeywordClass
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("invalid %s keyword %q: %s", e.Class, e.Keyword, e.Reason)
	}
	return fmt.Sprintf("invalid keyword %q: %s", e.Keyword, e.Reason)
}

// InputError reports a candidate that was skipped during evaluation.
type InputError struct {
	Index  int
	Title  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("candidate %d skipped: %s", e.Index, e.Reason)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsInputError reports whether err wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
