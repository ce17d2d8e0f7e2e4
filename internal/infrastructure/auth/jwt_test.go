package auth

import (
	"testing"
	"time"

	"github.com/enrolment/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Enabled:               true,
		Secret:                "test-secret-key-that-is-long-enough",
		Issuer:                "enrolment-test",
		AccessTokenExpiration: 15 * time.Minute,
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	token, issued, err := svc.Generate("operator-1", []string{"analytics"}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
	assert.Equal(t, "enrolment-test", claims.Issuer)
	assert.Equal(t, issued.ID, claims.ID)
	assert.True(t, claims.HasRole("analytics"))
	assert.False(t, claims.HasRole("admin"))
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestJWTService_GenerateRequiresSubject(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	_, _, err := svc.Generate("", nil, 0)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Generate("operator-1", nil, time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_NotYetValid(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Generate("operator-1", nil, time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(-time.Hour) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret-key-that-is-long-enough"
	foreign, _, err := NewJWTService(otherCfg).Generate("operator-1", nil, 0)
	require.NoError(t, err)
	_, err = svc.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherCfg = testJWTConfig()
	otherCfg.Issuer = "someone-else"
	wrongIssuer, _, err := NewJWTService(otherCfg).Generate("operator-1", nil, 0)
	require.NoError(t, err)
	_, err = svc.Validate(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	now := time.Now()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "enrolment-test",
			Subject:   "operator-1",
			Audience:  jwt.ClaimStrings{"enrolment-test"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Now()
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL(now))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	assert.Zero(t, c.RemainingTTL(now))
}
