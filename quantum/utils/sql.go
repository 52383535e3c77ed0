package utils

import (
	"regexp"
)

var autoincrementInsertRe = regexp.MustCompile(`(?is)^\s*INSERT\s+.*\s+RETURNING\s+\S+\s*;?\s*$`)

// IsAutoincrementInsertQuery reports whether query is an INSERT that returns the
// generated key, so that it has to be run with QueryRow instead of Exec.
func IsAutoincrementInsertQuery(query string) bool {
	return autoincrementInsertRe.MatchString(query)
}
