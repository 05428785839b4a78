package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carrinex/internal/models"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetMain(ctx context.Context, companyID uuid.UUID) (*models.Location, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error)
}

type locationRepo struct {
	db Database
}

func NewLocationRepo(db Database) LocationRepository {
	return &locationRepo{db: db}
}

const locationColumns = `id, company_id, name, street, city, zip, country, is_main, created_at`

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, company_id, name, street, city, zip, country, is_main, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		location.ID, location.CompanyID, location.Name,
		location.Address.Street, location.Address.City, location.Address.Zip, location.Address.Country,
		location.IsMain,
	)
	return err
}

func (r *locationRepo) GetMain(ctx context.Context, companyID uuid.UUID) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 AND is_main = true`
	location, err := scanLocation(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 ORDER BY is_main DESC, created_at ASC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

func scanLocation(row pgx.Row) (*models.Location, error) {
	location := &models.Location{}
	err := row.Scan(
		&location.ID, &location.CompanyID, &location.Name,
		&location.Address.Street, &location.Address.City, &location.Address.Zip, &location.Address.Country,
		&location.IsMain, &location.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return location, nil
}
