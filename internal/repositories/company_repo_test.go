package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"carrinex/internal/models"
)

type CompanyRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo CompanyRepository
	ctx  context.Context
}

func (suite *CompanyRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewCompanyRepo(mock)
	suite.ctx = context.Background()
}

func (suite *CompanyRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCompanyRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyRepoTestSuite))
}

func companyRowColumns() []string {
	return []string{
		"id", "name", "company_type", "admin_user_id", "is_approved",
		"vat_id", "phone", "contact_email",
		"vehicle_types", "service_areas", "industry", "preferred_cargo_types",
		"created_at", "updated_at",
	}
}

func (suite *CompanyRepoTestSuite) TestGetByID_ShipperVariant() {
	id := uuid.New()
	adminID := uuid.New()
	now := time.Now()
	industry := "einzelhandel"

	suite.mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(companyRowColumns()).AddRow(
			id, "Acme", models.CompanyTypeShipper, adminID, false,
			"DE123", "030", "a@acme.de",
			[]string(nil), []string(nil), &industry, []string{"pakete"},
			now, now))

	company, err := suite.repo.GetByID(suite.ctx, id)
	assert.NoError(suite.T(), err)

	profile, ok := company.Profile.(models.ShipperProfile)
	assert.True(suite.T(), ok, "shipper row must carry a shipper profile")
	assert.Equal(suite.T(), "einzelhandel", profile.Industry)
	assert.Equal(suite.T(), []string{"pakete"}, profile.PreferredCargoTypes)
}

func (suite *CompanyRepoTestSuite) TestGetByID_SubcontractorVariant() {
	id := uuid.New()
	adminID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(companyRowColumns()).AddRow(
			id, "Blitz Transporte", models.CompanyTypeSubcontractor, adminID, false,
			"DE456", "040", "b@blitz.de",
			[]string{"sprinter"}, []string{"Hamburg"}, (*string)(nil), []string(nil),
			now, now))

	company, err := suite.repo.GetByID(suite.ctx, id)
	assert.NoError(suite.T(), err)

	profile, ok := company.Profile.(models.SubcontractorProfile)
	assert.True(suite.T(), ok, "subcontractor row must carry a subcontractor profile")
	assert.Equal(suite.T(), []string{"sprinter"}, profile.VehicleTypes)
	assert.Equal(suite.T(), []string{"Hamburg"}, profile.ServiceAreas)
}

func (suite *CompanyRepoTestSuite) TestApprove_Success() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE companies SET is_approved = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.Approve(suite.ctx, id))
}

func (suite *CompanyRepoTestSuite) TestApprove_AlreadyApproved() {
	id := uuid.New()
	adminID := uuid.New()
	now := time.Now()
	industry := "einzelhandel"

	suite.mock.ExpectExec(`UPDATE companies SET is_approved = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(companyRowColumns()).AddRow(
			id, "Acme", models.CompanyTypeShipper, adminID, true,
			"DE123", "030", "a@acme.de",
			[]string(nil), []string(nil), &industry, []string{"pakete"},
			now, now))

	err := suite.repo.Approve(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, ErrAlreadyApproved)
}

func (suite *CompanyRepoTestSuite) TestApprove_UnknownCompany() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE companies SET is_approved = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	err := suite.repo.Approve(suite.ctx, id)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
