package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"carrinex/internal/models"
	"carrinex/internal/repositories"
)

// ErrProvisioningFailed signals that the atomic provisioning batch
// aborted; nothing is visible and the owner is unchanged.
var ErrProvisioningFailed = errors.New("provisioning failed")

// ProvisionService turns a finished wizard draft into one company, its
// locations and the owner update, committed all-or-nothing.
type ProvisionService interface {
	Provision(ctx context.Context, ownerID uuid.UUID, draft models.CompanyDraft, locations []models.LocationDraft) (*models.Company, error)
}

type provisionService struct {
	provisionRepo repositories.ProvisionerRepository
	logger        zerolog.Logger
}

func NewProvisionService(provisionRepo repositories.ProvisionerRepository, logger zerolog.Logger) ProvisionService {
	return &provisionService{provisionRepo: provisionRepo, logger: logger}
}

func (s *provisionService) Provision(ctx context.Context, ownerID uuid.UUID, draft models.CompanyDraft, locations []models.LocationDraft) (*models.Company, error) {
	if err := validateDraft(draft, locations); err != nil {
		return nil, err
	}

	// Ids are allocated per attempt; a retry after a failed batch never
	// reuses a previously allocated company id.
	now := time.Now()
	company := &models.Company{
		ID:          uuid.New(),
		Name:        draft.Name,
		Type:        draft.Type,
		AdminUserID: ownerID,
		IsApproved:  false,
		ContactInfo: draft.ContactInfo,
		Profile:     draft.Profile,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	records := make([]*models.Location, 0, len(locations))
	for _, l := range locations {
		records = append(records, &models.Location{
			ID:        uuid.New(),
			CompanyID: company.ID,
			Name:      l.Name,
			Address:   l.Address,
			IsMain:    l.IsMain,
			CreatedAt: now,
		})
	}

	if err := s.provisionRepo.ProvisionCompany(ctx, company, records, ownerID); err != nil {
		s.logger.Error().Err(err).
			Str("owner_id", ownerID.String()).
			Str("company_name", draft.Name).
			Msg("provisioning batch aborted")
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	s.logger.Info().
		Str("company_id", company.ID.String()).
		Str("company_type", string(company.Type)).
		Int("locations", len(records)).
		Msg("company provisioned")
	return company, nil
}

func validateDraft(draft models.CompanyDraft, locations []models.LocationDraft) error {
	if !draft.Type.Valid() {
		return fmt.Errorf("company type %q is not supported", draft.Type)
	}
	if draft.Profile == nil || draft.Profile.CompanyType() != draft.Type {
		return fmt.Errorf("draft profile does not match company type %q", draft.Type)
	}
	if len(locations) == 0 {
		return errors.New("at least one location is required")
	}
	mains := 0
	for _, l := range locations {
		if l.IsMain {
			mains++
		}
	}
	if mains != 1 {
		return fmt.Errorf("exactly one main location required, got %d", mains)
	}
	return nil
}
