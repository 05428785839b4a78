package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"carrinex/internal/common"
	"carrinex/internal/middleware"
	"carrinex/internal/models"
	"carrinex/internal/onboarding"
	"carrinex/internal/repositories"
	"carrinex/internal/routes"
	"carrinex/internal/services"
)

// OnboardingHandlers exposes the wizard state machine over HTTP. Every
// route requires a session; the wizard is keyed by the session subject.
type OnboardingHandlers struct {
	onboardingSvc services.OnboardingService
	authService   services.AuthService
	userRepo      repositories.UserRepository
	logger        zerolog.Logger
}

func NewOnboardingHandlers(onboardingSvc services.OnboardingService, authService services.AuthService, userRepo repositories.UserRepository, logger zerolog.Logger) *OnboardingHandlers {
	return &OnboardingHandlers{
		onboardingSvc: onboardingSvc,
		authService:   authService,
		userRepo:      userRepo,
		logger:        logger,
	}
}

type WizardResponse struct {
	Step     int                       `json:"step"`
	StepName string                    `json:"step_name"`
	Type     models.CompanyType        `json:"type,omitempty"`
	Info     onboarding.CompanyInfo    `json:"info"`
	Details  onboarding.CompanyDetails `json:"details"`
}

func wizardResponse(w *onboarding.Wizard) WizardResponse {
	return WizardResponse{
		Step:     int(w.Step),
		StepName: w.Step.String(),
		Type:     w.Type,
		Info:     w.Info,
		Details:  w.Details,
	}
}

// State returns the persisted wizard for the signed-in user, or a fresh
// one if no draft exists yet.
func (h *OnboardingHandlers) State(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	wizard, err := h.onboardingSvc.State(c.Request().Context(), userID)
	if err != nil {
		return common.SendServerError(c, "Failed to load onboarding state")
	}
	return c.JSON(http.StatusOK, wizardResponse(wizard))
}

type SelectTypeRequest struct {
	Type models.CompanyType `json:"type"`
}

func (h *OnboardingHandlers) SelectType(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req SelectTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	wizard, err := h.onboardingSvc.SelectType(c.Request().Context(), userID, req.Type)
	if err != nil {
		return h.wizardError(c, err)
	}
	return c.JSON(http.StatusOK, wizardResponse(wizard))
}

func (h *OnboardingHandlers) SubmitCompanyInfo(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var info onboarding.CompanyInfo
	if err := c.Bind(&info); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	wizard, err := h.onboardingSvc.SubmitCompanyInfo(c.Request().Context(), userID, info)
	if err != nil {
		return h.wizardError(c, err)
	}
	return c.JSON(http.StatusOK, wizardResponse(wizard))
}

func (h *OnboardingHandlers) SubmitCompanyDetails(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var details onboarding.CompanyDetails
	if err := c.Bind(&details); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	wizard, err := h.onboardingSvc.SubmitCompanyDetails(c.Request().Context(), userID, details)
	if err != nil {
		return h.wizardError(c, err)
	}
	return c.JSON(http.StatusOK, wizardResponse(wizard))
}

func (h *OnboardingHandlers) Back(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	wizard, err := h.onboardingSvc.Back(c.Request().Context(), userID)
	if err != nil {
		return h.wizardError(c, err)
	}
	return c.JSON(http.StatusOK, wizardResponse(wizard))
}

type ConfirmResponse struct {
	Company     *models.Company       `json:"company"`
	LandingPath string                `json:"landing_path"`
	Tokens      *models.TokenResponse `json:"tokens,omitempty"`
}

// Confirm dispatches the provisioner and, on success, reissues the
// session so the new company authority takes effect immediately instead
// of after the staleness window.
func (h *OnboardingHandlers) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	company, err := h.onboardingSvc.Confirm(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConfirmInFlight):
			return common.SendConflictError(c, "Confirmation already in progress")
		case errors.Is(err, services.ErrNoDraft), errors.Is(err, onboarding.ErrInvalidTransition):
			return common.SendConflictError(c, "Onboarding is not ready for confirmation")
		case errors.Is(err, services.ErrProvisioningFailed):
			return common.SendServerError(c, "Provisioning failed, please try again")
		default:
			h.logger.Error().Err(err).Msg("onboarding confirmation failed")
			return common.SendServerError(c, "Onboarding confirmation failed")
		}
	}

	resp := ConfirmResponse{Company: company}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("user reload failed after provisioning")
		resp.LandingPath = routes.DashboardPath
		return c.JSON(http.StatusCreated, resp)
	}
	resp.LandingPath = routes.LandingPathFor(user, company)

	tokens, err := h.authService.IssueSession(ctx, user)
	if err != nil {
		h.logger.Warn().Err(err).Msg("session reissue failed after onboarding; old authority remains until refresh")
	} else {
		resp.Tokens = tokens
		c.SetCookie(&http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    tokens.AccessToken,
			Path:     "/",
			MaxAge:   tokens.ExpiresIn,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *OnboardingHandlers) wizardError(c echo.Context, err error) error {
	if errors.Is(err, onboarding.ErrInvalidTransition) {
		return common.SendConflictError(c, err.Error())
	}
	return common.SendValidationError(c, err.Error())
}
