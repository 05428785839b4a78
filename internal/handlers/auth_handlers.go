package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"carrinex/internal/common"
	"carrinex/internal/middleware"
	"carrinex/internal/models"
	"carrinex/internal/repositories"
	"carrinex/internal/routes"
	"carrinex/internal/services"
)

// AuthHandlers handles sign-up, sign-in and session lifecycle requests.
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	companyRepo repositories.CompanyRepository
	logger      zerolog.Logger
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, companyRepo repositories.CompanyRepository, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RedirectURL string `json:"redirect_url"`
}

type SessionResponse struct {
	models.TokenResponse
	User       *models.User `json:"user"`
	RedirectTo string       `json:"redirect_to"`
}

// SignUp registers a new user. New users start without a company and are
// sent into onboarding.
func (h *AuthHandlers) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return common.SendValidationError(c, "Email, password and display name are required")
	}
	if len(req.Password) < 6 {
		return common.SendValidationError(c, "Password must have at least 6 characters")
	}

	user, err := h.authService.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return common.SendConflictError(c, "User already exists")
		}
		h.logger.Error().Err(err).Msg("sign-up failed")
		return common.SendServerError(c, "Failed to create user")
	}

	tokens, err := h.authService.IssueSession(ctx, user)
	if err != nil {
		h.logger.Error().Err(err).Msg("session issuance failed after sign-up")
		return common.SendServerError(c, "Failed to issue session")
	}
	h.setSessionCookie(c, tokens)

	return c.JSON(http.StatusCreated, SessionResponse{
		TokenResponse: *tokens,
		User:          user,
		RedirectTo:    routes.OnboardingPath,
	})
}

// SignIn verifies a credential pair and issues a session. Credential and
// profile failures look identical to the caller.
func (h *AuthHandlers) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "Email and password are required")
	}
	if req.RedirectURL == "" {
		req.RedirectURL = c.QueryParam(routes.RedirectURLParam)
	}

	user, err := h.authService.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrProfileNotFound) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("sign-in failed")
		return common.SendServerError(c, "Sign-in failed")
	}

	tokens, err := h.authService.IssueSession(ctx, user)
	if err != nil {
		h.logger.Error().Err(err).Msg("session issuance failed")
		return common.SendServerError(c, "Failed to issue session")
	}
	h.setSessionCookie(c, tokens)

	return c.JSON(http.StatusOK, SessionResponse{
		TokenResponse: *tokens,
		User:          user,
		RedirectTo:    h.redirectAfterSignIn(c, user, req.RedirectURL),
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates the token pair, re-deriving the authority set from
// current store state.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendClientError(c, "Refresh token is required")
	}

	tokens, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrProfileNotFound) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("token refresh failed")
		return common.SendServerError(c, "Failed to refresh session")
	}
	h.setSessionCookie(c, tokens)

	return c.JSON(http.StatusOK, tokens)
}

// SignOut revokes the refresh token and clears the session cookie.
func (h *AuthHandlers) SignOut(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	_ = c.Bind(&req)
	if req.RefreshToken != "" {
		if err := h.authService.RevokeSession(ctx, req.RefreshToken); err != nil {
			h.logger.Warn().Err(err).Msg("refresh token revocation failed")
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile, company and landing path.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "User")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load user")
	}

	company := h.companyFor(c, user)
	return c.JSON(http.StatusOK, map[string]any{
		"user":         user,
		"company":      company,
		"landing_path": routes.LandingPathFor(user, company),
	})
}

func (h *AuthHandlers) redirectAfterSignIn(c echo.Context, user *models.User, callback string) string {
	if !user.IsOnboarded && user.Role != models.RoleAdmin {
		return routes.OnboardingPath
	}
	// Only relative callbacks; anything else invites open redirects.
	if callback != "" && strings.HasPrefix(callback, "/") && !strings.HasPrefix(callback, "//") {
		return callback
	}
	return routes.LandingPathFor(user, h.companyFor(c, user))
}

func (h *AuthHandlers) companyFor(c echo.Context, user *models.User) *models.Company {
	if user.CompanyID == nil {
		return nil
	}
	company, err := h.companyRepo.GetByID(c.Request().Context(), *user.CompanyID)
	if err != nil {
		h.logger.Warn().Err(err).Str("company_id", user.CompanyID.String()).Msg("company lookup failed")
		return nil
	}
	return company
}

func (h *AuthHandlers) setSessionCookie(c echo.Context, tokens *models.TokenResponse) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   tokens.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
