package models

import (
	"time"

	"github.com/google/uuid"
)

type CompanyType string

const (
	CompanyTypeShipper       CompanyType = "shipper"
	CompanyTypeSubcontractor CompanyType = "subcontractor"
)

// Valid reports whether t is one of the two supported company types.
func (t CompanyType) Valid() bool {
	return t == CompanyTypeShipper || t == CompanyTypeSubcontractor
}

type ContactInfo struct {
	VatID string `json:"vat_id" db:"vat_id"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email" db:"contact_email"`
}

// CompanyProfile is the type-specific part of a company. Exactly one
// concrete profile exists per company and its tag must match Company.Type.
type CompanyProfile interface {
	CompanyType() CompanyType
}

type SubcontractorProfile struct {
	VehicleTypes []string `json:"vehicle_types"`
	ServiceAreas []string `json:"service_areas"`
}

func (SubcontractorProfile) CompanyType() CompanyType { return CompanyTypeSubcontractor }

type ShipperProfile struct {
	Industry            string   `json:"industry"`
	PreferredCargoTypes []string `json:"preferred_cargo_types"`
}

func (ShipperProfile) CompanyType() CompanyType { return CompanyTypeShipper }

type Company struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Type        CompanyType    `json:"type" db:"company_type"`
	AdminUserID uuid.UUID      `json:"admin_user_id" db:"admin_user_id"`
	IsApproved  bool           `json:"is_approved" db:"is_approved"`
	ContactInfo ContactInfo    `json:"contact_info"`
	Profile     CompanyProfile `json:"profile"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// CompanyDraft is the provisioner input accumulated by the onboarding
// wizard. It carries no identifiers; ids are allocated at commit time.
type CompanyDraft struct {
	Name        string         `json:"name"`
	Type        CompanyType    `json:"type"`
	ContactInfo ContactInfo    `json:"contact_info"`
	Profile     CompanyProfile `json:"profile"`
}
