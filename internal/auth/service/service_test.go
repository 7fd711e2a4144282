package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"marketplace_backend/internal/auth/repository"
	"marketplace_backend/internal/auth/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
)

type fakeRepo struct {
	users  map[string]repository.User
	tokens map[string]*repository.RefreshToken
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  make(map[string]repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
}

func (f *fakeRepo) CreateUser(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	if _, exists := f.users[params.Email]; exists {
		return repository.User{}, apperr.Conflict("email already registered")
	}
	user := repository.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FullName:     params.FullName,
		IsProvider:   params.IsProvider,
		CreatedAt:    time.Now(),
	}
	f.users[params.Email] = user
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (f *fakeRepo) CreateRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	f.tokens[tokenHash] = &repository.RefreshToken{UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeRepo) GetRefreshToken(_ context.Context, tokenHash string) (repository.RefreshToken, error) {
	if token, ok := f.tokens[tokenHash]; ok {
		return *token, nil
	}
	return repository.RefreshToken{}, apperr.Unauthorized("invalid refresh token")
}

func (f *fakeRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if token, ok := f.tokens[tokenHash]; ok {
		token.Revoked = true
	}
	return nil
}

func (f *fakeRepo) RevokeAllRefreshTokens(_ context.Context, userID uuid.UUID) error {
	for _, token := range f.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return "access-secret" }
func (testConfig) GetJWTRefreshSecret() string       { return "refresh-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

func newService(repo *fakeRepo) *Service {
	return New(repo, testConfig{}, logger.New("test"))
}

func signUp(t *testing.T, svc *Service, email string, provider bool) transport.AuthResponse {
	t.Helper()
	resp, err := svc.SignUp(context.Background(), transport.SignUpRequest{
		Email:      email,
		Password:   "correct horse battery",
		FullName:   "Pat Doe",
		IsProvider: provider,
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	return resp
}

func TestSignUpThenSignIn(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	created := signUp(t, svc, "pat@example.com", true)
	if created.AccessToken == "" || created.RefreshToken == "" {
		t.Fatal("sign-up did not issue a token pair")
	}

	signedIn, err := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "pat@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if signedIn.User.ID != created.User.ID {
		t.Errorf("signed in as %s, want %s", signedIn.User.ID, created.User.ID)
	}
}

func TestSignInWrongPasswordUnauthorized(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	signUp(t, svc, "pat@example.com", false)

	_, err := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "pat@example.com",
		Password: "wrong",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("SignIn() error = %v, want unauthorized", err)
	}

	// Unknown account reads the same as a wrong password.
	_, err2 := svc.SignIn(context.Background(), transport.SignInRequest{
		Email:    "nobody@example.com",
		Password: "wrong",
	})
	if err2 == nil || err2.Error() != err.Error() {
		t.Errorf("unknown email error %q differs from wrong password error %q", err2, err)
	}
}

func TestAccessTokenCarriesRoles(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	resp := signUp(t, svc, "provider@example.com", true)

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token invalid: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "access" {
		t.Errorf("type claim = %v, want access", claims["type"])
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "provider" {
		t.Errorf("roles claim = %v, want [provider]", roles)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	created := signUp(t, svc, "pat@example.com", false)

	refreshed, err := svc.Refresh(context.Background(), transport.RefreshRequest{RefreshToken: created.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == created.RefreshToken {
		t.Error("refresh token not rotated")
	}

	// The old token is spent; replaying it must fail.
	_, err = svc.Refresh(context.Background(), transport.RefreshRequest{RefreshToken: created.RefreshToken})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("replayed Refresh() error = %v, want unauthorized", err)
	}
}

func TestRefreshExpiredTokenUnauthorized(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	created := signUp(t, svc, "pat@example.com", false)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err := svc.Refresh(context.Background(), transport.RefreshRequest{RefreshToken: created.RefreshToken})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Refresh() error = %v, want unauthorized", err)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	created := signUp(t, svc, "pat@example.com", false)

	if err := svc.SignOut(context.Background(), created.RefreshToken); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	_, err := svc.Refresh(context.Background(), transport.RefreshRequest{RefreshToken: created.RefreshToken})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("Refresh() after sign-out error = %v, want unauthorized", err)
	}
}
