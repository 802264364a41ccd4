package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenService_Issue_And_Validate(t *testing.T) {
	req := require.New(t)
	service := NewTokenService("a_long_enough_testing_secret", time.Hour)

	sessionID := uuid.NewString()
	token, err := service.Issue(sessionID)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := service.Validate(token)
	req.NoError(err)
	req.Equal(sessionID, claims.SessionID)
	req.Equal("legal-lab", claims.Issuer)
}

func TestTokenService_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenService("first_secret_first_secret", time.Hour)
	validator := NewTokenService("other_secret_other_secret", time.Hour)

	token, err := issuer.Issue(uuid.NewString())
	req.NoError(err)

	_, err = validator.Validate(token)
	req.Error(err)
}

func TestTokenService_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	service := NewTokenService("a_long_enough_testing_secret", -time.Minute)

	token, err := service.Issue(uuid.NewString())
	req.NoError(err)

	_, err = service.Validate(token)
	req.Error(err)
}

func TestHashAndCompareAPIKey(t *testing.T) {
	req := require.New(t)
	key := "sk-legal-lab-Tr0p-Sur!"

	hash, err := HashAPIKey(key)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := CompareAPIKey(key, hash)
	req.NoError(err)
	req.True(match)

	match, err = CompareAPIKey("wrong-key", hash)
	req.NoError(err)
	req.False(match)
}

func TestCompareAPIKey_Invalid_Format(t *testing.T) {
	req := require.New(t)

	_, err := CompareAPIKey("anything", "not-an-encoded-hash")
	req.Error(err)
}
