package language

import "fmt"

// LoadError records why a language failed to load.
type LoadError struct {
	Lang string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("language %s: %s: %v", e.Lang, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnknownLanguageError is returned for codes no data directory provides.
type UnknownLanguageError struct {
	Code string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language %q", e.Code)
}

// UnavailableError is returned for languages whose data failed to load.
type UnavailableError struct {
	Code string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("language %s is unavailable: %v", e.Code, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
