package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/auth/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

const accessTokenType = "access"

// invalidCredentials is deliberately identical for unknown email and wrong
// password so sign-in does not leak which accounts exist.
const invalidCredentials = "invalid credentials"

// Service provides authentication business logic.
type Service struct {
	repo repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new auth service.
func New(repo repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
}

// SignUp registers an account and signs it in.
func (s *Service) SignUp(ctx context.Context, req transport.SignUpRequest) (transport.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "password hashing failed", err)
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     sanitize.Text(req.FullName),
		IsProvider:   req.IsProvider,
	})
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.Info("account created", "userId", user.ID, "isProvider", user.IsProvider)
	return s.issueTokens(ctx, user)
}

// SignIn authenticates an account with email and password.
func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (transport.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized(invalidCredentials)
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token and issues a fresh pair. The presented
// token is revoked whether or not it is still valid, so a replayed token
// can never mint a second pair.
func (s *Service) Refresh(ctx context.Context, req transport.RefreshRequest) (transport.AuthResponse, error) {
	hash := hashToken(req.RefreshToken)

	stored, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	if stored.Revoked {
		return transport.AuthResponse{}, apperr.Unauthorized("refresh token revoked")
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return transport.AuthResponse{}, apperr.Unauthorized("refresh token expired")
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return transport.AuthResponse{}, err
	}

	user, err := s.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return transport.AuthResponse{}, err
	}
	return s.issueTokens(ctx, user)
}

// SignOut revokes the presented refresh token. Unknown tokens are ignored;
// sign-out is idempotent.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repo.RevokeRefreshToken(ctx, hashToken(refreshToken))
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (transport.AuthResponse, error) {
	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "token generation failed", err)
	}

	expiresAt := s.now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return transport.AuthResponse{}, err
	}

	return transport.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: transport.UserInfo{
			ID:         user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			IsProvider: user.IsProvider,
			IsAdmin:    user.IsAdmin,
		},
	}, nil
}

func (s *Service) signAccessToken(user repository.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": rolesFor(user),
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// rolesFor derives the roles claim from the account flags.
func rolesFor(user repository.User) []string {
	roles := make([]string, 0, 2)
	if user.IsProvider {
		roles = append(roles, httpkit.RoleProvider)
	}
	if user.IsAdmin {
		roles = append(roles, httpkit.RoleAdmin)
	}
	return roles
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
