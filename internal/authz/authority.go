package authz

import "carrinex/internal/models"

// Authority tags carried by sessions and required by route rules. Company
// types double as authority tags once a user belongs to a company.
const (
	AuthorityAdmin         = "admin"
	AuthorityUser          = "user"
	AuthorityShipper       = string(models.CompanyTypeShipper)
	AuthoritySubcontractor = string(models.CompanyTypeSubcontractor)
)

// DeriveAuthority is the single source of truth for the role tags a
// session carries. Admins always get the admin tag regardless of company
// membership; everyone else is tagged with their company type, or the
// plain user tag while no company is known yet.
func DeriveAuthority(role string, companyType models.CompanyType) []string {
	if role == models.RoleAdmin {
		return []string{AuthorityAdmin}
	}
	if companyType.Valid() {
		return []string{string(companyType)}
	}
	return []string{AuthorityUser}
}
