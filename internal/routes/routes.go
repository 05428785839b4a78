package routes

import (
	"strings"

	"carrinex/internal/authz"
)

// Well-known paths shared between the gateway, the auth handlers and the
// dashboard router.
const (
	LandingPath                = "/"
	SignInPath                 = "/sign-in"
	SignUpPath                 = "/sign-up"
	OnboardingPath             = "/onboarding"
	AccessDeniedPath           = "/access-denied"
	DashboardPath              = "/dashboard"
	AdminDashboardPath         = "/admin/dashboard"
	ShipperDashboardPath       = "/shipper/dashboard"
	SubcontractorDashboardPath = "/subcontractor/dashboard"

	APIAuthPrefix = "/api/auth"
	APIPrefix     = "/api/"

	// RedirectURLParam is the callback query parameter appended to the
	// sign-in path when an unauthenticated request hits a protected page.
	RedirectURLParam = "redirectUrl"
)

// RouteMeta is display metadata attached to a rule; the gateway ignores it
// but page handlers serve it.
type RouteMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Rule maps a path to the authority set required to enter it. An empty
// authority set admits any authenticated user.
type Rule struct {
	Key       string    `json:"key"`
	Authority []string  `json:"authority"`
	Meta      RouteMeta `json:"meta"`
}

// Table is the static route configuration. It is built once at startup
// and injected read-only into the gateway; nothing mutates it afterwards.
type Table struct {
	protected map[string]Rule
	public    map[string]Rule
	authPages map[string]Rule

	staticPrefixes []string
	staticSuffixes []string
}

// NewTable builds a table from explicit rule sets. Used directly by tests;
// production wiring goes through Default.
func NewTable(protected, public, authPages map[string]Rule) *Table {
	return &Table{
		protected:      protected,
		public:         public,
		authPages:      authPages,
		staticPrefixes: []string{"/assets/", "/img/", "/images/", "/static/", "/_next/", "/health"},
		staticSuffixes: []string{".ico", ".png", ".jpg", ".svg", ".css", ".js"},
	}
}

// Default returns the fully enumerated production route table.
func Default() *Table {
	protected := map[string]Rule{
		DashboardPath: {
			Key:       "dashboard",
			Authority: []string{},
			Meta:      RouteMeta{Title: "Dashboard", Description: "Willkommen bei Carrinex"},
		},
		ShipperDashboardPath: {
			Key:       "shipper.dashboard",
			Authority: []string{authz.AuthorityShipper},
			Meta:      RouteMeta{Title: "Versender Dashboard", Description: "Verwalten Sie Ihre Aufträge"},
		},
		"/shipper/orders": {
			Key:       "shipper.orders",
			Authority: []string{authz.AuthorityShipper},
			Meta:      RouteMeta{Title: "Aufträge", Description: "Auftragsübersicht und -verwaltung"},
		},
		"/shipper/drivers": {
			Key:       "shipper.drivers",
			Authority: []string{authz.AuthorityShipper},
			Meta:      RouteMeta{Title: "Fahrer", Description: "Fahrerverwaltung"},
		},
		SubcontractorDashboardPath: {
			Key:       "subcontractor.dashboard",
			Authority: []string{authz.AuthoritySubcontractor},
			Meta:      RouteMeta{Title: "Subunternehmer Dashboard", Description: "Verwalten Sie Ihre Fahrer und Aufträge"},
		},
		"/subcontractor/orders": {
			Key:       "subcontractor.orders",
			Authority: []string{authz.AuthoritySubcontractor},
			Meta:      RouteMeta{Title: "Aufträge", Description: "Auftragsübersicht und -verwaltung"},
		},
		"/subcontractor/drivers": {
			Key:       "subcontractor.drivers",
			Authority: []string{authz.AuthoritySubcontractor},
			Meta:      RouteMeta{Title: "Fahrer", Description: "Fahrerverwaltung"},
		},
		AdminDashboardPath: {
			Key:       "admin.dashboard",
			Authority: []string{authz.AuthorityAdmin},
			Meta:      RouteMeta{Title: "Admin Dashboard", Description: "Plattformverwaltung"},
		},
		"/admin/companies": {
			Key:       "admin.companies",
			Authority: []string{authz.AuthorityAdmin},
			Meta:      RouteMeta{Title: "Unternehmen", Description: "Unternehmensverwaltung"},
		},
		"/admin/users": {
			Key:       "admin.users",
			Authority: []string{authz.AuthorityAdmin},
			Meta:      RouteMeta{Title: "Benutzer", Description: "Benutzerverwaltung"},
		},
		"/admin/settings": {
			Key:       "admin.settings",
			Authority: []string{authz.AuthorityAdmin},
			Meta:      RouteMeta{Title: "Einstellungen", Description: "Systemeinstellungen"},
		},
		"/profile": {
			Key:       "profile",
			Authority: []string{},
			Meta:      RouteMeta{Title: "Profil", Description: "Ihr Benutzerprofil"},
		},
		"/settings": {
			Key:       "settings",
			Authority: []string{},
			Meta:      RouteMeta{Title: "Einstellungen", Description: "Ihre persönlichen Einstellungen"},
		},
	}

	public := map[string]Rule{
		LandingPath: {
			Key:  "landing",
			Meta: RouteMeta{Title: "Carrinex", Description: "Die Plattform für Versender und Subunternehmer"},
		},
		AccessDeniedPath: {
			Key:  "accessDenied",
			Meta: RouteMeta{Title: "Zugriff verweigert", Description: "Sie haben keine Berechtigung, auf diese Seite zuzugreifen"},
		},
	}

	authPages := map[string]Rule{
		SignInPath: {Key: "signIn", Meta: RouteMeta{Title: "Anmelden"}},
		SignUpPath: {Key: "signUp", Meta: RouteMeta{Title: "Registrieren"}},
	}

	return NewTable(protected, public, authPages)
}

func (t *Table) IsStatic(path string) bool {
	for _, p := range t.staticPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, s := range t.staticSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func (t *Table) IsPublic(path string) bool {
	_, ok := t.public[path]
	return ok
}

func (t *Table) IsAuthPage(path string) bool {
	_, ok := t.authPages[path]
	return ok
}

// Rule returns the protected-route rule for a path, if one is enumerated.
func (t *Table) Rule(path string) (Rule, bool) {
	r, ok := t.protected[path]
	return r, ok
}

// PageRule resolves display metadata for any configured page path.
func (t *Table) PageRule(path string) (Rule, bool) {
	if r, ok := t.protected[path]; ok {
		return r, true
	}
	if r, ok := t.public[path]; ok {
		return r, true
	}
	r, ok := t.authPages[path]
	return r, ok
}

// Paths lists every configured page path; main uses it to register the
// page handler once per route.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.protected)+len(t.public)+len(t.authPages))
	for p := range t.protected {
		paths = append(paths, p)
	}
	for p := range t.public {
		paths = append(paths, p)
	}
	for p := range t.authPages {
		paths = append(paths, p)
	}
	return paths
}
