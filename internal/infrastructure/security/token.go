package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies when a non-positive TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

// JWTService issues HS256 tokens whose subject is the account email. It holds
// only immutable state and is safe for concurrent use.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService returns a service signing with secret. now may be nil.
func NewJWTService(secret string, ttl time.Duration, now func() time.Time) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(now),
		),
	}
}

// TTL is the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration { return s.ttl }

func (s *JWTService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) Verify(token string) (string, error) {
	if err := s.checkSignature(token); err != nil {
		return "", err
	}

	claims := &jwt.RegisteredClaims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", classify(err)
	}
	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// checkSignature verifies the HS256 MAC over the raw header and payload
// before either is decoded. The signature segment must be canonical
// base64url: trailing bits that do not reach the decoded bytes are rejected.
func (s *JWTService) checkSignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrTokenMalformed
	}
	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return ErrTokenBadSignature
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return ErrTokenBadSignature
	}
	return nil
}

// classify folds jwt's error set into the three outcomes callers care about.
// It only sees tokens whose signature already verified.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
