package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkordes/erj-report/internal/domain"
)

// Identity headers set by the authenticating proxy in front of the API.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

// NewIdentityHandler reads the caller's identity from the X-User-* headers
// and stores it in the request context as a domain.Actor. The name header
// may be URL-encoded so that non-ASCII names survive proxies. Requests
// without an id pass through anonymously; the authorization policy decides
// what an anonymous caller may do.
func NewIdentityHandler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			name := r.Header.Get(HeaderUserName)
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
			if role != domain.RoleAdmin {
				role = domain.RoleUser
			}
			actor := domain.Actor{ID: id, Name: strings.TrimSpace(name), Role: role}
			next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
		})
	}
}
