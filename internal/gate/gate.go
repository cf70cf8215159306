// Package gate maps an authenticated identity's role and the requested page
// path to an allow/redirect decision. It is a pure function evaluated fresh
// on every request; no transition history is retained.
package gate

import (
	"strings"

	"dongmun.org/internal/member"
)

// Redirect targets.
const (
	PathLogin   = "/login"
	PathPending = "/pending"
	PathHome    = "/bylaws"
)

type pathClass int

const (
	classOther pathClass = iota
	classAuth
	classPending
	classProtected
)

var (
	authPrefixes      = []string{"/login", "/join"}
	protectedPrefixes = []string{"/bylaws", "/finance", "/members", "/my-page"}
)

func classify(path string) pathClass {
	for _, p := range authPrefixes {
		if strings.HasPrefix(path, p) {
			return classAuth
		}
	}
	if strings.HasPrefix(path, "/pending") {
		return classPending
	}
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return classProtected
		}
	}
	return classOther
}

// Decision is the gate outcome for one request.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{RedirectTo: to} }

// Decide evaluates the access table for a request path. Unauthenticated
// callers reach only the auth pages; guests are confined to the pending page;
// approved members are kept off the auth and pending pages.
func Decide(authenticated bool, role member.Role, path string) Decision {
	class := classify(path)

	if !authenticated {
		if class == classProtected || class == classPending {
			return redirect(PathLogin)
		}
		return allow()
	}

	if !role.Approved() {
		if class == classPending || class == classAuth {
			return allow()
		}
		return redirect(PathPending)
	}

	if class == classPending || class == classAuth {
		return redirect(PathHome)
	}
	return allow()
}
