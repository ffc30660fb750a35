package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

var testParams = PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, keyLength)
}

func testCompany() *domain.Company {
	return &domain.Company{ID: "company-abc", Email: "ops@acme.test"}
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := testParams.Hash("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
}

func TestPassword_SaltedUniquely(t *testing.T) {
	a, err := testParams.Hash("same")
	require.NoError(t, err)
	b, err := testParams.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPassword_Rejects(t *testing.T) {
	_, err := testParams.Hash("")
	assert.Error(t, err)

	_, err = testParams.Hash(strings.Repeat("x", MaxPasswordLength+1))
	assert.Error(t, err)

	assert.False(t, VerifyPassword("not-a-hash", "x"))
	assert.False(t, VerifyPassword("$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA", "x"))
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKey(), 15*time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testCompany(), "session-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "company-abc", claims.CompanyID)
	assert.Equal(t, "ops@acme.test", claims.Email)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Minute, time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateAccessToken(testCompany(), "session-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongKey(t *testing.T) {
	a, err := NewTokenService(testKey(), time.Minute, time.Hour)
	require.NoError(t, err)
	b, err := NewTokenService(bytes.Repeat([]byte{0x07}, keyLength), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateAccessToken(testCompany(), "s")
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.VerifyAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Minute, time.Hour)
	require.NoError(t, err)

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
	assert.Len(t, HashRefreshToken(a), 64)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("zz"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
