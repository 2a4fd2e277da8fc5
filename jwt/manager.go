package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod defines a public type used by goSession APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodEd25519 is an exported constant or variable used by the session engine.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 is an exported constant or variable used by the session engine.
	MethodHS256 SigningMethod = "hs256"
)

// TokenType defines a public type used by goSession APIs.
//
// TokenType instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenType string

const (
	// TypeAccess is an exported constant or variable used by the session engine.
	TypeAccess TokenType = "access"
	// TypeRefresh is an exported constant or variable used by the session engine.
	TypeRefresh TokenType = "refresh"
)

var (
	// ErrInvalidSignature is an exported constant or variable used by the session engine.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired is an exported constant or variable used by the session engine.
	ErrExpired = errors.New("token expired")
	// ErrTypeMismatch is an exported constant or variable used by the session engine.
	ErrTypeMismatch = errors.New("token type mismatch")
	// ErrMalformedPayload is an exported constant or variable used by the session engine.
	ErrMalformedPayload = errors.New("token payload malformed")
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

// Credential is the decoded, verified view of a signed token.
//
// Credential instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Credential struct {
	SubjectID string
	Claims    map[string]string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type credentialClaims struct {
	Type   string            `json:"typ"`
	Claims map[string]string `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	return &Manager{config: cfg}, nil
}

// Encode describes the encode operation and its observable behavior.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
// Encode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Encode(subjectID string, claims map[string]string, typ TokenType, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", ErrMalformedPayload
	}
	if typ != TypeAccess && typ != TypeRefresh {
		return "", ErrTypeMismatch
	}
	if ttl <= 0 {
		return "", errors.New("invalid token ttl")
	}

	now := time.Now()
	cc := credentialClaims{
		Type:   string(typ),
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			// jti keeps rotation children distinct even within one clock second.
			ID: uuid.NewString(),
		},
	}
	if m.config.Issuer != "" {
		cc.Issuer = m.config.Issuer
	}

	token := jwt.NewWithClaims(m.getMethod(), cc)

	signKey, err := m.getSignKey()
	if err != nil {
		return "", err
	}

	return token.SignedString(signKey)
}

// Decode describes the decode operation and its observable behavior.
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
// Decode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Decode(tokenStr string, want TokenType) (*Credential, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &credentialClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.getVerifyKey()
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	cc, ok := token.Claims.(*credentialClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}
	if TokenType(cc.Type) != want {
		return nil, ErrTypeMismatch
	}
	if strings.TrimSpace(cc.Subject) == "" {
		return nil, ErrMalformedPayload
	}

	cred := &Credential{
		SubjectID: cc.Subject,
		Claims:    cc.Claims,
		Type:      TokenType(cc.Type),
	}
	if cc.IssuedAt != nil {
		cred.IssuedAt = cc.IssuedAt.Time
	}
	if cc.ExpiresAt != nil {
		cred.ExpiresAt = cc.ExpiresAt.Time
	}

	return cred, nil
}

// DecodeSafe is the best-effort decode variant: every failure collapses to
// (nil, false) so callers like logout can treat a garbage token as "no
// credential" instead of an error.
func (m *Manager) DecodeSafe(tokenStr string, want TokenType) (*Credential, bool) {
	if tokenStr == "" {
		return nil, false
	}
	cred, err := m.Decode(tokenStr, want)
	if err != nil {
		return nil, false
	}
	return cred, true
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedPayload
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return ErrInvalidSignature
	}
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(m.config.PrivateKey)
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPublicKey(m.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
