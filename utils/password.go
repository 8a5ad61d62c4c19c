package utils

import "strings"

// LegacyPassword derives the initial password the front desk has always used:
// the first three letters of the last name followed by the first three of the
// first name, lowercased. Names shorter than three letters are used whole.
func LegacyPassword(firstName, lastName string) string {
	return strings.ToLower(prefix(lastName, 3) + prefix(firstName, 3))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
