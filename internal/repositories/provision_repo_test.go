package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"carrinex/internal/models"
)

type ProvisionRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ProvisionerRepository
	ownerID uuid.UUID
	ctx     context.Context
}

func (suite *ProvisionRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProvisionRepo(mock)
	suite.ownerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *ProvisionRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProvisionRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisionRepoTestSuite))
}

func (suite *ProvisionRepoTestSuite) company() (*models.Company, []*models.Location) {
	company := &models.Company{
		ID:          uuid.New(),
		Name:        "Acme",
		Type:        models.CompanyTypeShipper,
		AdminUserID: suite.ownerID,
		ContactInfo: models.ContactInfo{VatID: "DE123", Phone: "030", Email: "a@acme.de"},
		Profile:     models.ShipperProfile{Industry: "einzelhandel", PreferredCargoTypes: []string{"pakete"}},
	}
	locations := []*models.Location{
		{
			ID:        uuid.New(),
			CompanyID: company.ID,
			Name:      "Hauptstandort",
			Address:   models.Address{Street: "Hauptstraße 1", City: "Berlin", Zip: "10115", Country: "Deutschland"},
			IsMain:    true,
		},
	}
	return company, locations
}

func (suite *ProvisionRepoTestSuite) TestProvision_Success() {
	company, locations := suite.company()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(company.ID, company.Name, company.Type, company.AdminUserID, false,
			"DE123", "030", "a@acme.de",
			[]string(nil), []string(nil), pgxmock.AnyArg(), []string{"pakete"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO locations`).
		WithArgs(locations[0].ID, company.ID, "Hauptstandort",
			"Hauptstraße 1", "Berlin", "10115", "Deutschland", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE users SET company_id`).
		WithArgs(company.ID, suite.ownerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback() // deferred rollback fires after commit

	err := suite.repo.ProvisionCompany(suite.ctx, company, locations, suite.ownerID)
	assert.NoError(suite.T(), err)
}

// A failure after the company insert must leave nothing visible: the
// transaction rolls back and no commit happens.
func (suite *ProvisionRepoTestSuite) TestProvision_LocationFailureRollsBack() {
	company, locations := suite.company()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(company.ID, company.Name, company.Type, company.AdminUserID, false,
			"DE123", "030", "a@acme.de",
			[]string(nil), []string(nil), pgxmock.AnyArg(), []string{"pakete"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO locations`).
		WithArgs(locations[0].ID, company.ID, "Hauptstandort",
			"Hauptstraße 1", "Berlin", "10115", "Deutschland", true).
		WillReturnError(errors.New("disk full"))
	suite.mock.ExpectRollback()

	err := suite.repo.ProvisionCompany(suite.ctx, company, locations, suite.ownerID)
	assert.Error(suite.T(), err)

	// a subsequent read finds no company with that id
	companyRepo := NewCompanyRepo(suite.mock)
	suite.mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id`).
		WithArgs(company.ID).
		WillReturnError(pgx.ErrNoRows)
	_, getErr := companyRepo.GetByID(suite.ctx, company.ID)
	assert.ErrorIs(suite.T(), getErr, ErrNotFound)
}

func (suite *ProvisionRepoTestSuite) TestProvision_OwnerAlreadyProvisioned() {
	company, locations := suite.company()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(company.ID, company.Name, company.Type, company.AdminUserID, false,
			"DE123", "030", "a@acme.de",
			[]string(nil), []string(nil), pgxmock.AnyArg(), []string{"pakete"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO locations`).
		WithArgs(locations[0].ID, company.ID, "Hauptstandort",
			"Hauptstraße 1", "Berlin", "10115", "Deutschland", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE users SET company_id`).
		WithArgs(company.ID, suite.ownerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.repo.ProvisionCompany(suite.ctx, company, locations, suite.ownerID)
	assert.ErrorIs(suite.T(), err, ErrOwnerAlreadyProvisioned)
}

func (suite *ProvisionRepoTestSuite) TestProvision_MissingProfileRejected() {
	company, locations := suite.company()
	company.Profile = nil

	suite.mock.ExpectBegin()
	suite.mock.ExpectRollback()

	err := suite.repo.ProvisionCompany(suite.ctx, company, locations, suite.ownerID)
	assert.Error(suite.T(), err)
}
