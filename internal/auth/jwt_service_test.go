package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	return svc
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := newTestJWT(t)

	token, err := svc.Issue("alice", 30*time.Minute)
	require.NoError(t, err)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestJWTService_Verify_Failures(t *testing.T) {
	svc := newTestJWT(t)
	other, err := NewJWTService("other-secret", "HS256", time.Minute)
	require.NoError(t, err)
	otherAlg, err := NewJWTService("test-secret", "HS512", time.Minute)
	require.NoError(t, err)

	expired, err := svc.Issue("alice", 0)
	require.NoError(t, err)
	past, err := svc.Issue("alice", -time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("alice", time.Minute)
	require.NoError(t, err)
	wrongAlg, err := otherAlg.Issue("alice", time.Minute)
	require.NoError(t, err)
	noSubject, err := svc.Issue("", time.Minute)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"zero ttl", expired},
		{"expired", past},
		{"bad signature", foreign},
		{"wrong algorithm", wrongAlg},
		{"missing subject", noSubject},
		{"alg none", unsigned},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, subject)
		})
	}
}

func TestJWTService_ExpiresAfterTTL(t *testing.T) {
	svc := newTestJWT(t)
	start := time.Now()
	svc.now = func() time.Time { return start }

	token, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(29 * time.Minute) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return start.Add(31 * time.Minute) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_RejectsAsymmetric(t *testing.T) {
	_, err := NewJWTService("secret", "RS256", time.Minute)
	assert.Error(t, err)
	_, err = NewJWTService("", "HS256", time.Minute)
	assert.Error(t, err)
}
