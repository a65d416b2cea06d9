package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingToken は Authorization ヘッダーにトークンがない場合に返されます。
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken は署名・期限・発行者のいずれかが不正な場合に返されます。
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims はセッショントークンのクレームです。Subject にユーザー ID を保持します。
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserID はトークンの持ち主のユーザー ID を返します。
func (c *Claims) UserID() string {
	return c.Subject
}

// Token は発行したトークンと有効期限です。
type Token struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}

// Issuer は HS256 のセッショントークンを発行・検証します。
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer は Issuer を生成します。
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL はトークンの有効期間を返します。
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue はユーザーとセッションに紐づくトークンを発行します。sessionID が空なら新しく採番します。
func (i *Issuer) Issue(userID, sessionID string) (Token, error) {
	if strings.TrimSpace(userID) == "" {
		return Token{}, errors.New("auth: user id is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}

	return Token{Value: signed, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Verify はトークンを検証しクレームを返します。
func (i *Issuer) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: subject and session are required", ErrInvalidToken)
	}

	return claims, nil
}

// BearerToken は "Bearer <token>" 形式のヘッダー値からトークンを取り出します。
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
