// Package normalize holds the small string clean-ups applied to user input
// before it is stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and keeps case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Category lowercases and trims a course category or level.
func Category(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Choice normalizes a filter choice; "all" and empty both mean no filter
// and come back as "".
func Choice(s string) string {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "all" {
		return ""
	}
	return v
}
