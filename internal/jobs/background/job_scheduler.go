package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"carrinex/internal/repositories"
)

// JobScheduler runs the periodic operator-visibility jobs: companies
// awaiting approval and the onboarding funnel backlog.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	companyRepo repositories.CompanyRepository
	userRepo    repositories.UserRepository
	logger      zerolog.Logger
}

func NewJobScheduler(companyRepo repositories.CompanyRepository, userRepo repositories.UserRepository, logger zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.pendingApprovalsDigest, context.Background()),
		gocron.WithName("pending-approvals-digest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.onboardingFunnelDigest, context.Background()),
		gocron.WithName("onboarding-funnel-digest"),
	); err != nil {
		return err
	}
	return nil
}

func (js *JobScheduler) pendingApprovalsDigest(ctx context.Context) {
	companies, err := js.companyRepo.ListPendingApproval(ctx)
	if err != nil {
		js.logger.Error().Err(err).Msg("pending approvals digest failed")
		return
	}
	if len(companies) == 0 {
		return
	}

	oldest := companies[0]
	js.logger.Info().
		Int("pending", len(companies)).
		Str("oldest_company_id", oldest.ID.String()).
		Time("oldest_created_at", oldest.CreatedAt).
		Msg("companies awaiting approval")
}

func (js *JobScheduler) onboardingFunnelDigest(ctx context.Context) {
	count, err := js.userRepo.CountNotOnboarded(ctx)
	if err != nil {
		js.logger.Error().Err(err).Msg("onboarding funnel digest failed")
		return
	}
	js.logger.Info().Int("users_not_onboarded", count).Msg("onboarding funnel")
}
