package onboarding

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"carrinex/internal/models"
)

// Step is the wizard position. Forward transitions are gated by the
// current step's validation; backward transitions never re-validate.
type Step int

const (
	StepTypeSelect Step = iota
	StepCompanyInfo
	StepCompanyDetails
	StepReview
	StepCommitted
)

func (s Step) String() string {
	switch s {
	case StepTypeSelect:
		return "type_select"
	case StepCompanyInfo:
		return "company_info"
	case StepCompanyDetails:
		return "company_details"
	case StepReview:
		return "review"
	case StepCommitted:
		return "committed"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrAlreadyCommitted  = errors.New("wizard already committed")
)

// CompanyInfo mirrors the company-data form: the first address block plus
// the optional second block that becomes the true main address when the
// entered one is marked as not the main location.
type CompanyInfo struct {
	CompanyName string `json:"company_name"`

	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`

	IsNotMainLocation bool   `json:"is_not_main_location"`
	LocationName      string `json:"location_name"`

	MainStreet  string `json:"main_street"`
	MainCity    string `json:"main_city"`
	MainZip     string `json:"main_zip"`
	MainCountry string `json:"main_country"`
}

// CompanyDetails carries the contact block plus both type-specific
// branches; only the branch matching the selected type is validated.
type CompanyDetails struct {
	VatID        string `json:"vat_id"`
	Phone        string `json:"phone"`
	ContactEmail string `json:"contact_email"`

	VehicleTypes []string `json:"vehicle_types"`
	ServiceAreas []string `json:"service_areas"`

	Industry            string   `json:"industry"`
	PreferredCargoTypes []string `json:"preferred_cargo_types"`
}

// Wizard is the single mutable aggregate for one user's onboarding run.
// It is rendering-free and serializable, so it can be persisted between
// requests.
type Wizard struct {
	UserID  uuid.UUID          `json:"user_id"`
	Step    Step               `json:"step"`
	Type    models.CompanyType `json:"type"`
	Info    CompanyInfo        `json:"info"`
	Details CompanyDetails     `json:"details"`
}

func NewWizard(userID uuid.UUID) *Wizard {
	return &Wizard{UserID: userID, Step: StepTypeSelect}
}

// SelectType records the company type and advances to the company-info
// step. Permitted while revisiting earlier steps, but the type is frozen
// once the wizard reaches review so the details branch cannot drift.
func (w *Wizard) SelectType(t models.CompanyType) error {
	if w.Step >= StepReview {
		return fmt.Errorf("%w: type selection after %s", ErrInvalidTransition, w.Step)
	}
	if !t.Valid() {
		return fmt.Errorf("company type %q is not supported", t)
	}
	w.Type = t
	if w.Step == StepTypeSelect {
		w.Step = StepCompanyInfo
	}
	return nil
}

// SubmitInfo validates and stores the company-info step, advancing to
// company details.
func (w *Wizard) SubmitInfo(info CompanyInfo) error {
	if w.Step < StepCompanyInfo || w.Step >= StepReview {
		return fmt.Errorf("%w: company info at %s", ErrInvalidTransition, w.Step)
	}
	if err := validateInfo(info); err != nil {
		return err
	}
	w.Info = info
	if w.Step == StepCompanyInfo {
		w.Step = StepCompanyDetails
	}
	return nil
}

// SubmitDetails validates the branch selected by the company type and
// advances to review.
func (w *Wizard) SubmitDetails(details CompanyDetails) error {
	if w.Step < StepCompanyDetails || w.Step >= StepReview {
		return fmt.Errorf("%w: company details at %s", ErrInvalidTransition, w.Step)
	}
	if err := validateDetails(w.Type, details); err != nil {
		return err
	}
	w.Details = details
	if w.Step == StepCompanyDetails {
		w.Step = StepReview
	}
	return nil
}

// Back moves one step backwards without re-validating anything already
// entered. No-op on the first step and after commit.
func (w *Wizard) Back() {
	if w.Step > StepTypeSelect && w.Step < StepCommitted {
		w.Step--
	}
}

// Commit marks the wizard terminal after a successful provisioning run.
func (w *Wizard) Commit() error {
	if w.Step != StepReview {
		return fmt.Errorf("%w: commit at %s", ErrInvalidTransition, w.Step)
	}
	w.Step = StepCommitted
	return nil
}

// Draft assembles the provisioner input from the accumulated steps. Only
// valid at review.
func (w *Wizard) Draft() (models.CompanyDraft, []models.LocationDraft, error) {
	if w.Step != StepReview {
		return models.CompanyDraft{}, nil, fmt.Errorf("%w: draft requested at %s", ErrInvalidTransition, w.Step)
	}

	draft := models.CompanyDraft{
		Name: w.Info.CompanyName,
		Type: w.Type,
		ContactInfo: models.ContactInfo{
			VatID: w.Details.VatID,
			Phone: w.Details.Phone,
			Email: w.Details.ContactEmail,
		},
	}
	switch w.Type {
	case models.CompanyTypeSubcontractor:
		draft.Profile = models.SubcontractorProfile{
			VehicleTypes: w.Details.VehicleTypes,
			ServiceAreas: w.Details.ServiceAreas,
		}
	case models.CompanyTypeShipper:
		draft.Profile = models.ShipperProfile{
			Industry:            w.Details.Industry,
			PreferredCargoTypes: w.Details.PreferredCargoTypes,
		}
	default:
		return models.CompanyDraft{}, nil, fmt.Errorf("company type %q is not supported", w.Type)
	}

	return draft, w.Locations(), nil
}

// Locations derives the location drafts from the company-info step:
// either the entered address as the single main location, or the entered
// address as a labeled secondary plus the second block as the main one.
func (w *Wizard) Locations() []models.LocationDraft {
	first := models.Address{
		Street:  w.Info.Street,
		City:    w.Info.City,
		Zip:     w.Info.Zip,
		Country: w.Info.Country,
	}
	if !w.Info.IsNotMainLocation {
		return []models.LocationDraft{
			{Name: "Hauptstandort", Address: first, IsMain: true},
		}
	}
	return []models.LocationDraft{
		{Name: w.Info.LocationName, Address: first, IsMain: false},
		{
			Name: "Hauptstandort",
			Address: models.Address{
				Street:  w.Info.MainStreet,
				City:    w.Info.MainCity,
				Zip:     w.Info.MainZip,
				Country: w.Info.MainCountry,
			},
			IsMain: true,
		},
	}
}

func validateInfo(info CompanyInfo) error {
	if strings.TrimSpace(info.CompanyName) == "" {
		return errors.New("company name is required")
	}
	if strings.TrimSpace(info.Street) == "" {
		return errors.New("street is required")
	}
	if strings.TrimSpace(info.City) == "" {
		return errors.New("city is required")
	}
	if len(strings.TrimSpace(info.Zip)) < 4 {
		return errors.New("zip must have at least 4 characters")
	}
	if strings.TrimSpace(info.Country) == "" {
		return errors.New("country is required")
	}
	if info.IsNotMainLocation {
		// All-or-nothing group: a secondary location needs its label and
		// the complete main address, not individual fields.
		if strings.TrimSpace(info.LocationName) == "" ||
			strings.TrimSpace(info.MainStreet) == "" ||
			strings.TrimSpace(info.MainCity) == "" ||
			strings.TrimSpace(info.MainZip) == "" ||
			strings.TrimSpace(info.MainCountry) == "" {
			return errors.New("secondary location requires the location name and the complete main address")
		}
	}
	return nil
}

func validateDetails(t models.CompanyType, details CompanyDetails) error {
	if strings.TrimSpace(details.VatID) == "" {
		return errors.New("vat id is required")
	}
	if strings.TrimSpace(details.Phone) == "" {
		return errors.New("phone number is required")
	}
	if _, err := mail.ParseAddress(details.ContactEmail); err != nil {
		return errors.New("contact email is invalid")
	}
	switch t {
	case models.CompanyTypeSubcontractor:
		if len(details.VehicleTypes) == 0 {
			return errors.New("at least one vehicle type is required")
		}
		if len(details.ServiceAreas) == 0 {
			return errors.New("at least one service area is required")
		}
	case models.CompanyTypeShipper:
		if strings.TrimSpace(details.Industry) == "" {
			return errors.New("industry is required")
		}
		if len(details.PreferredCargoTypes) == 0 {
			return errors.New("at least one cargo type is required")
		}
	default:
		return fmt.Errorf("company type %q is not supported", t)
	}
	return nil
}
