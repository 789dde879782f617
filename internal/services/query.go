package services

import (
	"math"
	"strings"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	// maxPage keeps (page-1)*limit within int for every accepted limit.
	maxPage = math.MaxInt32 / maxLimit
)

// clampLimit applies the default and the [1,maxLimit] bounds.
func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return defaultLimit
	case limit < 1:
		return 1
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

// likeEscape is the ESCAPE character used by containsPattern; '!' needs no
// quoting in any of the supported SQL dialects.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
// Compare it against LOWER(column) with ESCAPE '!'.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}
