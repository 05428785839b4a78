package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"carrinex/internal/authz"
	"carrinex/internal/common"
	"carrinex/internal/models"
	"carrinex/internal/repositories"
)

// CompanyHandlers serves company reads, the admin list and the one-shot
// approval action.
type CompanyHandlers struct {
	companyRepo  repositories.CompanyRepository
	locationRepo repositories.LocationRepository
	userRepo     repositories.UserRepository
	logger       zerolog.Logger
}

func NewCompanyHandlers(companyRepo repositories.CompanyRepository, locationRepo repositories.LocationRepository, userRepo repositories.UserRepository, logger zerolog.Logger) *CompanyHandlers {
	return &CompanyHandlers{
		companyRepo:  companyRepo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// GetCompany returns one company. Members see their own company; admins
// see any.
func (h *CompanyHandlers) GetCompany(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid company id")
	}
	if !h.mayAccessCompany(c, companyID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	company, err := h.companyRepo.GetByID(ctx, companyID)
	if errors.Is(err, repositories.ErrNotFound) {
		return common.SendNotFoundError(c, "Company")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to load company")
	}
	return c.JSON(http.StatusOK, company)
}

// ListCompanies is the admin overview, newest first.
func (h *CompanyHandlers) ListCompanies(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	companies, err := h.companyRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list companies")
	}
	return c.JSON(http.StatusOK, map[string]any{"companies": companies})
}

// ApproveCompany flips the approval flag. The flag flips exactly once; a
// repeated approval is a conflict.
func (h *CompanyHandlers) ApproveCompany(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid company id")
	}

	err = h.companyRepo.Approve(ctx, companyID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return common.SendNotFoundError(c, "Company")
	case errors.Is(err, repositories.ErrAlreadyApproved):
		return common.SendConflictError(c, "Company already approved")
	case err != nil:
		return common.SendServerError(c, "Failed to approve company")
	}

	h.logger.Info().Str("company_id", companyID.String()).Msg("company approved")
	return c.NoContent(http.StatusNoContent)
}

// ListLocations returns a company's locations, main location first.
func (h *CompanyHandlers) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid company id")
	}
	if !h.mayAccessCompany(c, companyID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	locations, err := h.locationRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return common.SendServerError(c, "Failed to list locations")
	}
	return c.JSON(http.StatusOK, map[string]any{"locations": locations})
}

func (h *CompanyHandlers) mayAccessCompany(c echo.Context, companyID uuid.UUID) bool {
	ctx := c.Request().Context()
	authority, _ := common.GetAuthorityFromContext(ctx)
	claims := models.SessionClaims{Authority: authority}
	if claims.HasAuthority([]string{authz.AuthorityAdmin}) {
		return true
	}

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return false
	}
	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return user.CompanyID != nil && *user.CompanyID == companyID
}
