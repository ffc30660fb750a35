package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/carbontrack-server/internal/auth"
	domainerrors "github.com/carbontrack/carbontrack-server/internal/errors"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:            "Acme Corp",
		Email:           "Ops@Acme.example",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Industry:        "manufacturing",
		Size:            "medium",
	}
}

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	c, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.example", c.Email)
	assert.NotEqual(t, "secret123", c.PasswordHash)
	assert.True(t, auth.VerifyPassword(c.PasswordHash, "secret123"))

	got, err := env.auth.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
}

func TestRegister_DuplicateEmailIsValidationError(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	req := validRegistration()
	req.Name = "Someone Else"
	req.Email = "  OPS@acme.example "
	_, err = env.auth.Register(ctx, req)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "is already registered", domainerrors.FieldErrors(err)["email"])

	// Nothing written: the original account is unchanged.
	got, err := env.store.GetCompanyByEmail(ctx, "ops@acme.example")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Acme Corp", got.Name)
}

func TestRegister_Validation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name  string
		edit  func(*RegisterRequest)
		field string
	}{
		{"short name", func(r *RegisterRequest) { r.Name = "A" }, "name"},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "12345", "12345" }, "password"},
		{"mismatched confirmation", func(r *RegisterRequest) { r.ConfirmPassword = "other123" }, "confirm_password"},
		{"unknown industry", func(r *RegisterRequest) { r.Industry = "mining" }, "industry"},
		{"unknown size", func(r *RegisterRequest) { r.Size = "huge" }, "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.edit(&req)
			_, err := env.auth.Register(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, domainerrors.FieldErrors(err), tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	c := env.register(t, "Acme Corp", "ops@acme.example")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "OPS@acme.example", Password: "secret123"},
		auth.ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.Company.ID)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, c.ID, claims.CompanyID)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	session, err := env.store.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session.IPAddress)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "Acme Corp", "ops@acme.example")

	for _, req := range []LoginRequest{
		{Email: "ops@acme.example", Password: "wrong-password"},
		{Email: "nobody@acme.example", Password: "secret123"},
	} {
		_, err := env.auth.Login(context.Background(), req, auth.ClientInfo{})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials), req.Email)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "Acme Corp", "ops@acme.example")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "ops@acme.example", Password: "secret123"}, auth.ClientInfo{})
	require.NoError(t, err)

	refreshed, err := env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, auth.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, login.SessionID, refreshed.SessionID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = env.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, auth.ClientInfo{})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "Acme Corp", "ops@acme.example")

	login, err := env.auth.Login(ctx, LoginRequest{Email: "ops@acme.example", Password: "secret123"}, auth.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, login.SessionID))
	require.NoError(t, env.auth.Logout(ctx, login.SessionID), "logout is idempotent")

	_, err = env.auth.VerifyAccessToken(ctx, login.AccessToken)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}
