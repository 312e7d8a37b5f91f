// Package access decides whether a navigation may proceed. Decide does no
// I/O: identity and role are resolved by the caller before it is invoked.
package access

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"click-collect/internal/data/entity"
)

// RedirectParam carries the originally requested path to the login page.
const RedirectParam = "redirect"

type Paths struct {
	Home              string
	Login             string
	AuthCallback      string // prefix of the auth-callback family
	Merchant          string // merchant subtree
	MerchantDashboard string
	// Onboarding subtrees inside Merchant that skip the merchant role check.
	// They still require an identity.
	MerchantOnboarding []string
	// Extra public prefixes on top of Home, Login and AuthCallback.
	Public []string
}

func DefaultPaths() Paths {
	return Paths{
		Home:               "/",
		Login:              "/login",
		AuthCallback:       "/auth",
		Merchant:           "/merchant",
		MerchantDashboard:  "/merchant/dashboard",
		MerchantOnboarding: []string{"/merchant/setup", "/merchant/pending"},
	}
}

type Verdict int

const (
	Allow Verdict = iota
	Redirect
)

type Decision struct {
	Verdict Verdict
	Target  string
	Query   url.Values
}

func (d Decision) Allowed() bool {
	return d.Verdict == Allow
}

// Location renders the redirect URL; empty for Allow.
func (d Decision) Location() string {
	if d.Verdict != Redirect {
		return ""
	}
	if len(d.Query) == 0 {
		return d.Target
	}
	return d.Target + "?" + d.Query.Encode()
}

func (d Decision) String() string {
	if d.Verdict == Allow {
		return "allow"
	}
	return fmt.Sprintf("redirect(%s)", d.Location())
}

type Gate struct {
	paths Paths
}

func NewGate(paths Paths) Gate {
	return Gate{paths: paths}
}

// Decide applies, in order: unauthenticated access to a protected path goes
// to login with the path preserved; customers are kept out of the merchant
// subtree except onboarding pages; authenticated users never see the login
// page again; anything else is allowed.
func (g Gate) Decide(rawPath string, identityPresent bool, role entity.Role) Decision {
	p := clean(rawPath)

	if !identityPresent && !g.public(p) {
		return Decision{
			Verdict: Redirect,
			Target:  g.paths.Login,
			Query:   url.Values{RedirectParam: []string{p}},
		}
	}

	if identityPresent && g.merchantOnly(p) {
		switch role {
		case entity.RoleCustomer:
			return redirectTo(g.paths.Home)
		case entity.RoleMerchant:
			// merchants may enter the whole subtree
		default:
			// unknown roles are treated as the least privileged one
			return redirectTo(g.paths.Home)
		}
	}

	if identityPresent && p == clean(g.paths.Login) {
		switch role {
		case entity.RoleMerchant:
			return redirectTo(g.paths.MerchantDashboard)
		case entity.RoleCustomer:
			return redirectTo(g.paths.Home)
		default:
			return redirectTo(g.paths.Home)
		}
	}

	return Decision{Verdict: Allow}
}

// IsPublic reports whether p is reachable without an identity.
func (g Gate) IsPublic(p string) bool {
	return g.public(clean(p))
}

func (g Gate) public(p string) bool {
	if p == clean(g.paths.Home) || p == clean(g.paths.Login) {
		return true
	}
	if under(p, g.paths.AuthCallback) {
		return true
	}
	for _, prefix := range g.paths.Public {
		if under(p, prefix) {
			return true
		}
	}
	return false
}

func (g Gate) merchantOnly(p string) bool {
	if !under(p, g.paths.Merchant) {
		return false
	}
	for _, exempt := range g.paths.MerchantOnboarding {
		if under(p, exempt) {
			return false
		}
	}
	return true
}

func redirectTo(target string) Decision {
	return Decision{Verdict: Redirect, Target: target}
}

// under reports whether p equals prefix or lies below it on a segment
// boundary, so "/merchants" is not under "/merchant".
func under(p, prefix string) bool {
	prefix = clean(prefix)
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
