package schema

const (
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// Methods returns the recognized methods in a fixed order.
func Methods() []string {
	return []string{MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// IsValidMethod reports whether method is one of the recognized verbs.
func IsValidMethod(method string) bool {
	switch method {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}
