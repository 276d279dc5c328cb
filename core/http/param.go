package http

// PatternKind is the shape classification of a single path segment.
// Route compilation and runtime matching both reduce segments to one
// of these kinds; placeholders additionally constrain the value shape.
type PatternKind uint8

const (
	PatternNone PatternKind = iota // empty or non-matching segment
	PatternId                      // digits only, any length
	PatternSlug                    // letters/digits mixed with hyphens
	PatternAlpha                   // letters only
	PatternDigits                  // digits only (alias shape of Id)
	PatternDate                    // yyyy-mm-dd
	PatternYear                    // four digits
	PatternMonth                   // two digits, 01-12
	PatternDay                     // two digits, 01-31
)

var patternNames = [...]string{
	PatternNone:   "none",
	PatternId:     "id",
	PatternSlug:   "slug",
	PatternAlpha:  "alpha",
	PatternDigits: "digits",
	PatternDate:   "date",
	PatternYear:   "year",
	PatternMonth:  "month",
	PatternDay:    "day",
}

func (k PatternKind) String() string {
	if int(k) < len(patternNames) {
		return patternNames[k]
	}
	return "invalid"
}

// Param is one resolved dynamic-route parameter: the placeholder's
// pattern kind and the literal value taken from the request path.
// Literal (non-placeholder) positions are never surfaced as params.
type Param struct {
	Kind  PatternKind
	Value string
}
