package util

import "strings"

// Descore turns a storage title (underscores) into its display form.
func Descore(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
}

// Underscore turns a display title into its storage form.
func Underscore(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}
