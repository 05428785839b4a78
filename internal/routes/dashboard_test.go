package routes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"carrinex/internal/models"
)

func TestLandingPathFor(t *testing.T) {
	companyID := uuid.New()

	shipperCompany := &models.Company{ID: companyID, Type: models.CompanyTypeShipper}
	subcontractorCompany := &models.Company{ID: companyID, Type: models.CompanyTypeSubcontractor}

	tests := []struct {
		name     string
		user     *models.User
		company  *models.Company
		expected string
	}{
		{
			name:     "admin lands on admin dashboard",
			user:     &models.User{Role: models.RoleAdmin, IsOnboarded: true},
			company:  nil,
			expected: AdminDashboardPath,
		},
		{
			name:     "user without company goes to onboarding",
			user:     &models.User{Role: models.RoleUser},
			company:  nil,
			expected: OnboardingPath,
		},
		{
			name:     "user not onboarded goes to onboarding even with company record",
			user:     &models.User{Role: models.RoleUser, IsOnboarded: false},
			company:  shipperCompany,
			expected: OnboardingPath,
		},
		{
			name:     "onboarded shipper member",
			user:     &models.User{Role: models.RoleUser, CompanyID: &companyID, IsOnboarded: true},
			company:  shipperCompany,
			expected: ShipperDashboardPath,
		},
		{
			name:     "onboarded subcontractor member",
			user:     &models.User{Role: models.RoleUser, CompanyID: &companyID, IsOnboarded: true},
			company:  subcontractorCompany,
			expected: SubcontractorDashboardPath,
		},
		{
			name:     "unknown company type hits the defensive terminal",
			user:     &models.User{Role: models.RoleUser, CompanyID: &companyID, IsOnboarded: true},
			company:  &models.Company{ID: companyID, Type: "freight-forwarder"},
			expected: AccessDeniedPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LandingPathFor(tt.user, tt.company))
		})
	}
}

func TestLandingPathForAuthority(t *testing.T) {
	assert.Equal(t, AdminDashboardPath, LandingPathForAuthority([]string{"admin"}))
	assert.Equal(t, ShipperDashboardPath, LandingPathForAuthority([]string{"shipper"}))
	assert.Equal(t, SubcontractorDashboardPath, LandingPathForAuthority([]string{"subcontractor"}))
	assert.Equal(t, OnboardingPath, LandingPathForAuthority([]string{"user"}))
	assert.Equal(t, OnboardingPath, LandingPathForAuthority(nil))
}
