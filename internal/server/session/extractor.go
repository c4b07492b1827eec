package session

import (
	"net/http"
	"strings"
)

// Extractor pulls a raw token out of a request.
type Extractor interface {
	Extract(r *http.Request) (string, bool)
}

type ExtractorFunc func(r *http.Request) (string, bool)

func (f ExtractorFunc) Extract(r *http.Request) (string, bool) { return f(r) }

// BearerHeader reads "Authorization: Bearer <token>". The scheme is matched
// case-insensitively.
func BearerHeader() Extractor {
	return ExtractorFunc(func(r *http.Request) (string, bool) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	})
}

// Cookie reads the named cookie. An empty value counts as absent.
func Cookie(name string) Extractor {
	return ExtractorFunc(func(r *http.Request) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	})
}

// firstToken tries extractors in order and returns the first hit.
func firstToken(r *http.Request, extractors []Extractor) (string, bool) {
	for _, e := range extractors {
		if tok, ok := e.Extract(r); ok {
			return tok, true
		}
	}
	return "", false
}
