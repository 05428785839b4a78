package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carrinex/internal/models"
)

// ErrOwnerAlreadyProvisioned is returned when the owning user already
// references a company; the conditional update refuses a second
// provisioning run for the same owner.
var ErrOwnerAlreadyProvisioned = errors.New("owner already belongs to a company")

// ProvisionerRepository commits a company, its locations and the owner
// update as one transaction. Sequential independent writes would expose a
// window where a company exists without locations or without the owner
// back-reference.
type ProvisionerRepository interface {
	ProvisionCompany(ctx context.Context, company *models.Company, locations []*models.Location, ownerID uuid.UUID) error
}

type provisionRepo struct {
	db Database
}

func NewProvisionRepo(db Database) ProvisionerRepository {
	return &provisionRepo{db: db}
}

func (r *provisionRepo) ProvisionCompany(ctx context.Context, company *models.Company, locations []*models.Location, ownerID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin provisioning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	companyQuery := `
		INSERT INTO companies (id, name, company_type, admin_user_id, is_approved,
		                       vat_id, phone, contact_email,
		                       vehicle_types, service_areas, industry, preferred_cargo_types,
		                       created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	var (
		vehicleTypes []string
		serviceAreas []string
		industry     *string
		cargoTypes   []string
	)
	switch profile := company.Profile.(type) {
	case models.SubcontractorProfile:
		vehicleTypes = profile.VehicleTypes
		serviceAreas = profile.ServiceAreas
	case models.ShipperProfile:
		industry = &profile.Industry
		cargoTypes = profile.PreferredCargoTypes
	default:
		return fmt.Errorf("company %s has no profile for type %q", company.ID, company.Type)
	}

	if _, err := tx.Exec(ctx, companyQuery,
		company.ID, company.Name, company.Type, company.AdminUserID, company.IsApproved,
		company.ContactInfo.VatID, company.ContactInfo.Phone, company.ContactInfo.Email,
		vehicleTypes, serviceAreas, industry, cargoTypes,
	); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}

	locationQuery := `
		INSERT INTO locations (id, company_id, name, street, city, zip, country, is_main, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	for _, location := range locations {
		if _, err := tx.Exec(ctx, locationQuery,
			location.ID, location.CompanyID, location.Name,
			location.Address.Street, location.Address.City, location.Address.Zip, location.Address.Country,
			location.IsMain,
		); err != nil {
			return fmt.Errorf("insert location %s: %w", location.ID, err)
		}
	}

	// Conditional owner update: succeeds only while the owner is still
	// unprovisioned, so a concurrent double submission cannot leave two
	// companies racing over one user.
	ownerQuery := `
		UPDATE users SET company_id = $1, is_onboarded = true, updated_at = NOW()
		WHERE id = $2 AND company_id IS NULL
	`
	tag, err := tx.Exec(ctx, ownerQuery, company.ID, ownerID)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOwnerAlreadyProvisioned
	}

	return tx.Commit(ctx)
}
