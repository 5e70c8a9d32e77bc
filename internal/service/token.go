package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scopes granted to the user-settings portal link.
const (
	ScopeGetUserInfo     = "GetUserInfo"
	ScopeManageUserInfo  = "ManageUserInfo"
	ScopeGetUsageData    = "GetUsageData"
	ScopeDeleteUsageData = "DeleteUsageData"
)

// SettingsTokenValidity is how long a settings-portal link stays usable.
const SettingsTokenValidity = 10 * time.Minute

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the decoded content of a settings-portal token.
type TokenClaims struct {
	Purpose   string
	UserKey   string
	Scopes    []string
	RequestID string
}

// HasScope reports whether the token grants the named capability.
func (c *TokenClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenService issues and validates the signed, time-boxed tokens backing the
// settings portal, authenticates webhook calls against the shared secret, and
// hashes platform user ids into store keys.
type TokenService struct {
	jwtSecret    string
	webhookToken string
	now          func() time.Time
}

func NewTokenService(jwtSecret, webhookToken string) *TokenService {
	return &TokenService{
		jwtSecret:    jwtSecret,
		webhookToken: webhookToken,
		now:          time.Now,
	}
}

// IssueToken creates a signed token scoped to the given capabilities, valid
// for SettingsTokenValidity from now.
func (s *TokenService) IssueToken(purpose, userKey string, scopes []string, requestID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"purpose": purpose,
		"uid":     userKey,
		"scope":   strings.Join(scopes, " "),
		"req_id":  requestID,
		"iat":     now.Unix(),
		"exp":     now.Add(SettingsTokenValidity).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies the signature and expiry of a settings-portal token
// and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{}
	if v, ok := mapClaims["purpose"].(string); ok {
		claims.Purpose = v
	}
	if v, ok := mapClaims["uid"].(string); ok {
		claims.UserKey = v
	}
	if v, ok := mapClaims["scope"].(string); ok && v != "" {
		claims.Scopes = strings.Split(v, " ")
	}
	if v, ok := mapClaims["req_id"].(string); ok {
		claims.RequestID = v
	}
	return claims, nil
}

// VerifyWebhookToken compares a bearer token from a webhook call against the
// shared secret in constant time.
func (s *TokenService) VerifyWebhookToken(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookToken)) == 1
}

// HashUserID derives the pseudonymous store key for a platform user id. The
// prefix names the platform ("KT-", "FB-", "TG-", "LN-") and the remainder is
// the SHA-256 hex digest of the raw id, which is never stored.
func HashUserID(prefix, rawID string) string {
	sum := sha256.Sum256([]byte(rawID))
	return prefix + hex.EncodeToString(sum[:])
}

// NewRequestID generates the short id that ties log lines and user-facing
// error messages to a single request.
func NewRequestID() string {
	return uuid.NewString()[:8]
}
