// Package diag contains building blocks for formatting and processing
// diagnostic information, such as parse errors in expressions and templates.
package diag

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}
