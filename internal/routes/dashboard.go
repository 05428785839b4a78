package routes

import (
	"carrinex/internal/authz"
	"carrinex/internal/models"
)

// LandingPathFor resolves the landing page for a user after sign-in.
// Total over every (user, company) combination; an onboarded user whose
// company carries an unknown type lands on the access-denied page.
func LandingPathFor(user *models.User, company *models.Company) string {
	if user.Role == models.RoleAdmin {
		return AdminDashboardPath
	}
	if company == nil || !user.IsOnboarded {
		return OnboardingPath
	}
	switch company.Type {
	case models.CompanyTypeShipper:
		return ShipperDashboardPath
	case models.CompanyTypeSubcontractor:
		return SubcontractorDashboardPath
	}
	return AccessDeniedPath
}

// LandingPathForAuthority is the session-claim variant used by the
// gateway, which only sees the embedded authority set.
func LandingPathForAuthority(authority []string) string {
	for _, tag := range authority {
		switch tag {
		case authz.AuthorityAdmin:
			return AdminDashboardPath
		case authz.AuthorityShipper:
			return ShipperDashboardPath
		case authz.AuthoritySubcontractor:
			return SubcontractorDashboardPath
		}
	}
	return OnboardingPath
}
