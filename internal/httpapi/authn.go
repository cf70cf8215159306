package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"dongmun.org/internal/auth"
	"dongmun.org/internal/gate"
	"dongmun.org/internal/member"
)

const (
	authHeader    = "Authorization"
	bearer        = "Bearer "
	sessionCookie = "dongmun_session"
)

var publicPaths = []string{
	"/v1/auth/register",
	"/v1/auth/login",
	"/v1/auth/logout",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
}

// pagePrefixes lists the browser navigation paths. The JSON API lives under
// /v1 and is never gated by redirect; these paths are what the gate mediates.
var pagePrefixes = []string{
	"/login", "/join", "/pending",
	"/bylaws", "/finance", "/members", "/my-page",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func isPagePath(path string) bool {
	for _, p := range pagePrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// sessionToken pulls the credential from the Authorization header, falling
// back to the session cookie the login handler sets for browsers.
func sessionToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get(authHeader)); header != "" {
		if strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
			return strings.TrimSpace(header[len(bearer):])
		}
		return ""
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// currentMember resolves the request credential to a live roster record.
// The roster is re-read on every request so role changes and withdrawals take
// effect immediately, not at next login.
func (a *API) currentMember(r *http.Request) (*member.Member, error) {
	token := sessionToken(r)
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	claims, err := auth.ParseAndValidate(token)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	m, err := a.members.Get(r.Context(), claims.Subject)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	if m.Status == member.StatusWithdrawn {
		return nil, auth.ErrInvalidToken
	}
	return m, nil
}

// withAuth authenticates API requests and stores the member identity in the
// request context. Page paths are left to the gate middleware.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/v1/") || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		m, err := a.currentMember(r)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				writeError(w, r, http.StatusUnauthorized, "invalid or missing credentials")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithMember(r.Context(), m.ID, string(m.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// pageGate applies the navigation decision table to browser page paths,
// answering with redirects the way the web frontend expects.
func (a *API) pageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && !isPagePath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var (
			authenticated bool
			role          member.Role
		)
		if m, err := a.currentMember(r); err == nil {
			authenticated = true
			role = m.Role
		}

		d := gate.Decide(authenticated, role, r.URL.Path)
		if !d.Allow {
			http.Redirect(w, r, d.RedirectTo, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCapability loads the caller from context-backed state and checks the
// capability table. It returns the acting member so handlers can attribute
// writes without a second lookup.
func (a *API) requireCapability(w http.ResponseWriter, r *http.Request, c member.Capability) (*member.Member, bool) {
	id, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	m, err := a.members.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	if !m.Role.Can(c) {
		writeError(w, r, http.StatusForbidden, "insufficient role")
		return nil, false
	}
	return m, true
}
