package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"carrinex/internal/models"
)

type ProvisionServiceTestSuite struct {
	suite.Suite
	repo    *MockProvisionerRepository
	svc     ProvisionService
	ownerID uuid.UUID
	ctx     context.Context
}

func (suite *ProvisionServiceTestSuite) SetupTest() {
	suite.repo = new(MockProvisionerRepository)
	suite.svc = NewProvisionService(suite.repo, zerolog.Nop())
	suite.ownerID = uuid.New()
	suite.ctx = context.Background()
}

func TestProvisionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisionServiceTestSuite))
}

func shipperDraft() (models.CompanyDraft, []models.LocationDraft) {
	draft := models.CompanyDraft{
		Name: "Acme",
		Type: models.CompanyTypeShipper,
		ContactInfo: models.ContactInfo{
			VatID: "DE123", Phone: "030", Email: "a@acme.de",
		},
		Profile: models.ShipperProfile{
			Industry:            "einzelhandel",
			PreferredCargoTypes: []string{"pakete"},
		},
	}
	locations := []models.LocationDraft{
		{
			Name:    "Hauptstandort",
			Address: models.Address{Street: "Hauptstraße 1", City: "Berlin", Zip: "10115", Country: "Deutschland"},
			IsMain:  true,
		},
	}
	return draft, locations
}

func (suite *ProvisionServiceTestSuite) TestProvision_Success() {
	draft, locations := shipperDraft()

	var persisted *models.Company
	suite.repo.On("ProvisionCompany", suite.ctx, mock.AnythingOfType("*models.Company"), mock.Anything, suite.ownerID).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*models.Company)
			records := args.Get(2).([]*models.Location)
			assert.Len(suite.T(), records, 1)
			assert.True(suite.T(), records[0].IsMain)
			assert.Equal(suite.T(), persisted.ID, records[0].CompanyID)
		}).
		Return(nil)

	company, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), persisted, company)
	assert.Equal(suite.T(), models.CompanyTypeShipper, company.Type)
	assert.Equal(suite.T(), suite.ownerID, company.AdminUserID)
	assert.False(suite.T(), company.IsApproved)
}

func (suite *ProvisionServiceTestSuite) TestProvision_InvalidType() {
	draft, locations := shipperDraft()
	draft.Type = "freighter"

	_, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.Error(suite.T(), err)
	suite.repo.AssertNotCalled(suite.T(), "ProvisionCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProvisionServiceTestSuite) TestProvision_ProfileTypeMismatch() {
	draft, locations := shipperDraft()
	draft.Profile = models.SubcontractorProfile{VehicleTypes: []string{"sprinter"}, ServiceAreas: []string{"Berlin"}}

	_, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.Error(suite.T(), err)
}

func (suite *ProvisionServiceTestSuite) TestProvision_LocationShape() {
	draft, locations := shipperDraft()

	_, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, nil)
	assert.Error(suite.T(), err, "no locations")

	locations[0].IsMain = false
	_, err = suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.Error(suite.T(), err, "no main location")

	locations = append(locations, locations[0])
	locations[0].IsMain = true
	locations[1].IsMain = true
	_, err = suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.Error(suite.T(), err, "two main locations")
}

func (suite *ProvisionServiceTestSuite) TestProvision_WrapsRepoFailure() {
	draft, locations := shipperDraft()
	cause := errors.New("connection reset")
	suite.repo.On("ProvisionCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(cause)

	_, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.ErrorIs(suite.T(), err, ErrProvisioningFailed)
	assert.ErrorIs(suite.T(), err, cause)
}

// A retry after a failed batch allocates fresh ids rather than replaying
// the previous attempt's identifiers.
func (suite *ProvisionServiceTestSuite) TestProvision_FreshIDsPerAttempt() {
	draft, locations := shipperDraft()

	var ids []uuid.UUID
	suite.repo.On("ProvisionCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ids = append(ids, args.Get(1).(*models.Company).ID)
		}).
		Return(errors.New("transient")).Once()
	suite.repo.On("ProvisionCompany", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ids = append(ids, args.Get(1).(*models.Company).ID)
		}).
		Return(nil).Once()

	_, err := suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.Error(suite.T(), err)
	_, err = suite.svc.Provision(suite.ctx, suite.ownerID, draft, locations)
	assert.NoError(suite.T(), err)

	assert.Len(suite.T(), ids, 2)
	assert.NotEqual(suite.T(), ids[0], ids[1])
}
