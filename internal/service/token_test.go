package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewTokenService("test-secret", "hook-token")

	token, err := svc.IssueToken("UserSettings", "KT-abc", []string{ScopeGetUserInfo, ScopeManageUserInfo}, "deadbeef")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "UserSettings", claims.Purpose)
	assert.Equal(t, "KT-abc", claims.UserKey)
	assert.Equal(t, "deadbeef", claims.RequestID)
	assert.True(t, claims.HasScope(ScopeGetUserInfo))
	assert.True(t, claims.HasScope(ScopeManageUserInfo))
	assert.False(t, claims.HasScope(ScopeDeleteUsageData))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", "hook-token")

	claims, err := svc.ValidateToken("invalid.token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", "hook-token")
	verifier := NewTokenService("secret-b", "hook-token")

	token, err := issuer.IssueToken("UserSettings", "KT-abc", nil, "deadbeef")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", "hook-token")
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.IssueToken("UserSettings", "KT-abc", []string{ScopeGetUserInfo}, "deadbeef")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(SettingsTokenValidity + time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewTokenService("test-secret", "hook-token")

	assert.True(t, svc.VerifyWebhookToken("hook-token"))
	assert.False(t, svc.VerifyWebhookToken("wrong"))
	assert.False(t, svc.VerifyWebhookToken(""))
}

func TestHashUserID(t *testing.T) {
	a := HashUserID("KT-", "user-1")
	b := HashUserID("KT-", "user-1")
	c := HashUserID("FB-", "user-1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("KT-")+64)
	assert.NotContains(t, a, "user-1")
}

func TestNewRequestID(t *testing.T) {
	id := NewRequestID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, NewRequestID())
}
