package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"carrinex/internal/authz"
	"carrinex/internal/caching"
	"carrinex/internal/models"
	"carrinex/internal/repositories"
)

var (
	// ErrInvalidCredentials covers a wrong email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProfileNotFound means the credential verified but no domain
	// profile exists. Surfaced to callers like bad credentials, logged
	// distinctly as a provisioning anomaly.
	ErrProfileNotFound = errors.New("profile not found")
)

const tokenIssuer = "carrinex-auth"

// AuthService resolves credential pairs to domain profiles and issues
// session artifacts carrying the derived authority set.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	IssueSession(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeSession(ctx context.Context, refreshToken string) error
	ParseSession(token string) (*models.SessionClaims, error)
}

type authService struct {
	userRepo    repositories.UserRepository
	companyRepo repositories.CompanyRepository
	cacheSvc    caching.CacheService
	jwtSecret   []byte
	tokenTTL    time.Duration
	refreshTTL  time.Duration
	logger      zerolog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepository,
	companyRepo repositories.CompanyRepository,
	cacheSvc caching.CacheService,
	jwtSecret []byte,
	tokenTTL, refreshTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		cacheSvc:    cacheSvc,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
		logger:      logger,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CompanyID:    nil,
		IsOnboarded:  false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	subjectID, hash, err := s.userRepo.GetCredentialByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, subjectID)
	if errors.Is(err, repositories.ErrNotFound) {
		// Verified credential without a profile is a provisioning
		// anomaly, not a typo; keep the operator trail separate from
		// ordinary sign-in failures.
		s.logger.Error().Str("subject_id", subjectID.String()).Msg("credential verified but no profile exists")
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) IssueSession(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	authority := s.authorityFor(ctx, user)
	now := time.Now()
	tokenID := uuid.NewString()

	claims := models.SessionClaims{
		Authority: authority,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	cacheKey := refreshTokenKey(refreshToken)
	if err := s.cacheSvc.SetString(ctx, cacheKey, user.ID.String(), s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		Authority:    authority,
		IssuedAt:     now,
	}, nil
}

func (s *authService) RefreshSession(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	cacheKey := refreshTokenKey(refreshToken)
	userIDStr, err := s.cacheSvc.GetString(ctx, cacheKey)
	if errors.Is(err, caching.ErrCacheMiss) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error().Str("subject_id", userID.String()).Msg("refresh token for vanished profile")
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	// Rotate: the old token is gone before the new pair is issued, and
	// the authority set is re-derived from current store state.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		return nil, err
	}
	return s.IssueSession(ctx, user)
}

func (s *authService) RevokeSession(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKey(refreshToken))
}

func (s *authService) ParseSession(token string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*models.SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// authorityFor applies the uniform derivation rule at issuance time. The
// company type is looked up once here; afterwards the embedded claim is
// trusted until the session is reissued.
func (s *authService) authorityFor(ctx context.Context, user *models.User) []string {
	var companyType models.CompanyType
	if user.CompanyID != nil {
		company, err := s.companyRepo.GetByID(ctx, *user.CompanyID)
		if err != nil {
			s.logger.Warn().Err(err).Str("company_id", user.CompanyID.String()).Msg("company lookup failed during session issuance")
		} else {
			companyType = company.Type
		}
	}
	return authz.DeriveAuthority(user.Role, companyType)
}

func refreshTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "refresh_token:" + hex.EncodeToString(sum[:])
}

func generateSecureToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
