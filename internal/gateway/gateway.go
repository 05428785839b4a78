package gateway

import (
	"net/url"
	"strings"

	"carrinex/internal/models"
	"carrinex/internal/routes"
)

// Class is the request classification the gateway evaluates in a fixed
// priority order.
type Class int

const (
	ClassStatic Class = iota
	ClassAlwaysPublic
	ClassAPIAuth
	ClassAPI
	ClassOnboarding
	ClassAuthPage
	ClassPublicPage
	ClassProtectedPage
)

// Decision is the gateway's verdict for a single request: either pass, or
// redirect to Target. PreserveQuery tells the transport adapter to carry
// the original query string over to the redirect target.
type Decision struct {
	Pass          bool
	Target        string
	PreserveQuery bool
}

func pass() Decision { return Decision{Pass: true} }

func redirect(target string) Decision { return Decision{Target: target} }

// Gateway renders pass/redirect decisions from the injected route table.
// It holds no mutable state and performs no store round-trips; the session
// loader is invoked at most once and only for classes that need it.
type Gateway struct {
	table *routes.Table
}

func New(table *routes.Table) *Gateway {
	return &Gateway{table: table}
}

// Classify buckets a path without touching the session.
func (g *Gateway) Classify(path string) Class {
	switch {
	case g.table.IsStatic(path):
		return ClassStatic
	case g.table.IsPublic(path):
		return ClassAlwaysPublic
	case strings.HasPrefix(path, routes.APIAuthPrefix):
		return ClassAPIAuth
	case strings.HasPrefix(path, routes.APIPrefix):
		return ClassAPI
	case path == routes.OnboardingPath:
		return ClassOnboarding
	case g.table.IsAuthPage(path):
		return ClassAuthPage
	default:
		return ClassProtectedPage
	}
}

// Decide classifies the request and renders the decision. The session
// loader decodes the session artifact lazily so static and public traffic
// never pays for it; a nil result means signed out.
func (g *Gateway) Decide(path, rawQuery string, load func() *models.SessionClaims) Decision {
	var (
		sess   *models.SessionClaims
		loaded bool
	)
	session := func() *models.SessionClaims {
		if !loaded {
			sess = load()
			loaded = true
		}
		return sess
	}

	switch g.Classify(path) {
	case ClassStatic, ClassAlwaysPublic, ClassPublicPage:
		return pass()

	case ClassAPIAuth, ClassAPI:
		// Identity-provider callbacks bypass role checks entirely;
		// remaining API routes enforce their own session middleware.
		return pass()

	case ClassOnboarding:
		// Reachable for any signed-in user regardless of onboarding or
		// approval state, otherwise the wizard could lock itself out.
		if session() == nil {
			return redirect(signInWithCallback(path, rawQuery))
		}
		return pass()

	case ClassAuthPage:
		if s := session(); s != nil {
			return redirect(routes.LandingPathForAuthority(s.Authority))
		}
		return pass()

	default: // ClassProtectedPage
		s := session()
		if s == nil {
			return redirect(signInWithCallback(path, rawQuery))
		}
		rule, ok := g.table.Rule(path)
		if !ok {
			// No enumerated rule for a protected path: fail closed. The
			// table is fully enumerated, so an unknown path is a
			// misconfiguration, not a grant.
			return redirect(routes.AccessDeniedPath)
		}
		if !s.HasAuthority(rule.Authority) {
			return redirect(routes.AccessDeniedPath)
		}
		return pass()
	}
}

func signInWithCallback(path, rawQuery string) string {
	callback := path
	if rawQuery != "" {
		callback += "?" + rawQuery
	}
	return routes.SignInPath + "?" + routes.RedirectURLParam + "=" + url.QueryEscape(callback)
}
