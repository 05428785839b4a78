package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carrinex/internal/models"
)

// ErrAlreadyApproved is returned when approving a company that has been
// approved before; the approval flag flips exactly once.
var ErrAlreadyApproved = errors.New("company already approved")

type CompanyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
	ListPendingApproval(ctx context.Context) ([]*models.Company, error)
	Approve(ctx context.Context, id uuid.UUID) error
}

type companyRepo struct {
	db Database
}

func NewCompanyRepo(db Database) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, name, company_type, admin_user_id, is_approved,
		       vat_id, phone, contact_email,
		       vehicle_types, service_areas, industry, preferred_cargo_types,
		       created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var (
		company      models.Company
		vehicleTypes []string
		serviceAreas []string
		industry     *string
		cargoTypes   []string
	)
	err := row.Scan(
		&company.ID, &company.Name, &company.Type, &company.AdminUserID, &company.IsApproved,
		&company.ContactInfo.VatID, &company.ContactInfo.Phone, &company.ContactInfo.Email,
		&vehicleTypes, &serviceAreas, &industry, &cargoTypes,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Collapse the sparse columns into the variant matching the type tag.
	switch company.Type {
	case models.CompanyTypeSubcontractor:
		company.Profile = models.SubcontractorProfile{
			VehicleTypes: vehicleTypes,
			ServiceAreas: serviceAreas,
		}
	case models.CompanyTypeShipper:
		profile := models.ShipperProfile{PreferredCargoTypes: cargoTypes}
		if industry != nil {
			profile.Industry = *industry
		}
		company.Profile = profile
	}
	return &company, nil
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return scanCompany(r.db.QueryRow(ctx, query, id))
}

func (r *companyRepo) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (r *companyRepo) ListPendingApproval(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_approved = false ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func collectCompanies(rows pgx.Rows) ([]*models.Company, error) {
	var companies []*models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *companyRepo) Approve(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE companies SET is_approved = true, updated_at = NOW() WHERE id = $1 AND is_approved = false`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either unknown id or a second approval attempt.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyApproved
	}
	return nil
}
