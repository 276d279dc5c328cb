// Package router compiles route path templates into pattern sequences,
// resolves incoming (verb, path) pairs against a two-tier route table,
// and runs each route's middleware chain with abort/redirect
// short-circuit semantics.
package router

import (
	"github.com/supranim/supranim-sub001/core/http"
)

// Classify reduces a path segment to its shape class by scanning its
// characters: digits only is Id, letters only is Alpha, letters and
// digits mixed with hyphens is Slug. Segments containing any other
// character classify as None and never match a placeholder. Literal
// route segments are classified with the same scan so that a literal
// "42" and a "{id}" placeholder compare as the same shape at runtime.
func Classify(seg string) http.PatternKind {
	if seg == "" {
		return http.PatternNone
	}
	var digits, letters, hyphens int
	for i := 0; i < len(seg); i++ {
		switch c := seg[i]; {
		case c >= '0' && c <= '9':
			digits++
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			letters++
		case c == '-':
			hyphens++
		default:
			return http.PatternNone
		}
	}
	switch {
	case letters == 0 && hyphens == 0:
		return http.PatternId
	case digits == 0 && hyphens == 0:
		return http.PatternAlpha
	default:
		return http.PatternSlug
	}
}

// accepts reports whether a request segment satisfies a placeholder of
// the given kind. The basic kinds compare shape classes; the date kinds
// additionally validate the raw value.
func accepts(kind http.PatternKind, seg string) bool {
	switch kind {
	case http.PatternId, http.PatternDigits:
		return Classify(seg) == http.PatternId
	case http.PatternAlpha:
		return Classify(seg) == http.PatternAlpha
	case http.PatternSlug:
		return Classify(seg) == http.PatternSlug
	case http.PatternYear:
		return len(seg) == 4 && allDigits(seg)
	case http.PatternMonth:
		return len(seg) == 2 && allDigits(seg) && inRange(seg, 1, 12)
	case http.PatternDay:
		return len(seg) == 2 && allDigits(seg) && inRange(seg, 1, 31)
	case http.PatternDate:
		return isDate(seg)
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func inRange(s string, lo, hi int) bool {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n >= lo && n <= hi
}

// isDate validates the yyyy-mm-dd shape.
func isDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	return allDigits(s[:4]) &&
		allDigits(s[5:7]) && inRange(s[5:7], 1, 12) &&
		allDigits(s[8:]) && inRange(s[8:], 1, 31)
}
