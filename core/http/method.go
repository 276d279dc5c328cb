package http

// Method is an HTTP verb understood by the route table.
type Method uint8

const (
	MethodGet Method = iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch

	methodCount
)

// NumMethods is the number of verbs the route table is keyed by.
const NumMethods = int(methodCount)

var methodNames = [methodCount]string{
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

// ParseMethod maps a request-line token to a verb. The second return
// value is false for any token that is not one of the nine verbs;
// such requests are answered with 501 and never reach the router.
func ParseMethod(token string) (Method, bool) {
	switch token {
	case "GET":
		return MethodGet, true
	case "HEAD":
		return MethodHead, true
	case "POST":
		return MethodPost, true
	case "PUT":
		return MethodPut, true
	case "DELETE":
		return MethodDelete, true
	case "CONNECT":
		return MethodConnect, true
	case "OPTIONS":
		return MethodOptions, true
	case "TRACE":
		return MethodTrace, true
	case "PATCH":
		return MethodPatch, true
	}
	return 0, false
}

func (m Method) String() string {
	if m < methodCount {
		return methodNames[m]
	}
	return "UNKNOWN"
}
