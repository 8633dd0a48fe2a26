// Package spell suggests corrections for misspelled names, as in:
//
//	unknown statement type "Fucntion" (did you mean Function?)
package spell // import "github.com/nixlox/lox/internal/spell"

import (
	"strings"
	"unicode"
)

// Nearest returns the candidate nearest to x by edit distance, ignoring
// case and underscores, or "" if every candidate differs from x in
// more than half its characters.
func Nearest(x string, candidates []string) string {
	x = fold(x)
	var best string
	limit := (len(x) + 1) / 2
	for _, c := range candidates {
		if d := distance(x, fold(c), limit); d < limit {
			limit = d
			best = c
		}
	}
	return best
}

// Suggest returns a " (did you mean ...?)" suffix for a message about
// the unknown name x, or "" if no candidate is near.
func Suggest(x string, candidates []string) string {
	if near := Nearest(x, candidates); near != "" {
		return " (did you mean " + near + "?)"
	}
	return ""
}

func fold(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// distance returns the Levenshtein distance between the byte strings
// x and y. Once every prefix alignment exceeds bound, it gives up and
// returns some value greater than bound.
func distance(x, y string, bound int) int {
	if len(x) > len(y) {
		x, y = y, x
	}
	n := 0
	for n < len(x) && x[n] == y[n] {
		n++
	}
	x, y = x[n:], y[n:]
	if x == "" {
		return len(y)
	}

	// row[j] is the distance between the current prefix of x and y[:j].
	row := make([]int, len(y)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(x); i++ {
		diag := row[0]
		row[0] = i
		rowMin := i
		for j := 1; j <= len(y); j++ {
			cost := diag
			if x[i-1] != y[j-1] {
				cost++
			}
			d := min(cost, row[j-1]+1, row[j]+1)
			diag, row[j] = row[j], d
			rowMin = min(rowMin, d)
		}
		if rowMin > bound {
			return rowMin
		}
	}
	return row[len(y)]
}
