package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"carrinex/internal/caching"
	"carrinex/internal/models"
	"carrinex/internal/onboarding"
)

var (
	// ErrConfirmInFlight rejects a second confirmation while a
	// provisioning call for the same wizard is outstanding.
	ErrConfirmInFlight = errors.New("confirmation already in flight")
	// ErrNoDraft means no wizard state exists for the user yet.
	ErrNoDraft = errors.New("no onboarding draft")
)

// OnboardingService drives the wizard state machine for one user at a
// time, persisting the draft between requests and handing the finished
// draft to the provisioner.
type OnboardingService interface {
	State(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error)
	SelectType(ctx context.Context, userID uuid.UUID, companyType models.CompanyType) (*onboarding.Wizard, error)
	SubmitCompanyInfo(ctx context.Context, userID uuid.UUID, info onboarding.CompanyInfo) (*onboarding.Wizard, error)
	SubmitCompanyDetails(ctx context.Context, userID uuid.UUID, details onboarding.CompanyDetails) (*onboarding.Wizard, error)
	Back(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error)
	Confirm(ctx context.Context, userID uuid.UUID) (*models.Company, error)
}

type onboardingService struct {
	cacheSvc     caching.CacheService
	provisionSvc ProvisionService
	draftTTL     time.Duration
	logger       zerolog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewOnboardingService(cacheSvc caching.CacheService, provisionSvc ProvisionService, draftTTL time.Duration, logger zerolog.Logger) OnboardingService {
	return &onboardingService{
		cacheSvc:     cacheSvc,
		provisionSvc: provisionSvc,
		draftTTL:     draftTTL,
		logger:       logger,
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

func (s *onboardingService) State(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	wizard, err := s.cacheSvc.GetWizard(ctx, userID)
	if errors.Is(err, caching.ErrCacheMiss) {
		return onboarding.NewWizard(userID), nil
	}
	return wizard, err
}

func (s *onboardingService) SelectType(ctx context.Context, userID uuid.UUID, companyType models.CompanyType) (*onboarding.Wizard, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error {
		return w.SelectType(companyType)
	})
}

func (s *onboardingService) SubmitCompanyInfo(ctx context.Context, userID uuid.UUID, info onboarding.CompanyInfo) (*onboarding.Wizard, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error {
		return w.SubmitInfo(info)
	})
}

func (s *onboardingService) SubmitCompanyDetails(ctx context.Context, userID uuid.UUID, details onboarding.CompanyDetails) (*onboarding.Wizard, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error {
		return w.SubmitDetails(details)
	})
}

func (s *onboardingService) Back(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error {
		w.Back()
		return nil
	})
}

func (s *onboardingService) Confirm(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	if !s.begin(userID) {
		return nil, ErrConfirmInFlight
	}
	defer s.end(userID)

	wizard, err := s.cacheSvc.GetWizard(ctx, userID)
	if errors.Is(err, caching.ErrCacheMiss) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}

	draft, locations, err := wizard.Draft()
	if err != nil {
		return nil, err
	}

	company, err := s.provisionSvc.Provision(ctx, userID, draft, locations)
	if err != nil {
		// The wizard stays on review with all entered data; the caller
		// may retry once the in-flight guard clears.
		return nil, err
	}

	if err := wizard.Commit(); err != nil {
		return nil, err
	}
	if err := s.cacheSvc.DeleteWizard(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to drop committed onboarding draft")
	}
	return company, nil
}

// mutate runs one transition against the persisted wizard. A failed
// transition leaves the stored draft untouched.
func (s *onboardingService) mutate(ctx context.Context, userID uuid.UUID, fn func(*onboarding.Wizard) error) (*onboarding.Wizard, error) {
	wizard, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(wizard); err != nil {
		return nil, err
	}
	if err := s.cacheSvc.SetWizard(ctx, wizard, s.draftTTL); err != nil {
		return nil, fmt.Errorf("persist onboarding draft: %w", err)
	}
	return wizard, nil
}

func (s *onboardingService) begin(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *onboardingService) end(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}
