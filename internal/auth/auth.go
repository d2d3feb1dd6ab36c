package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/truth0530/ds-ch-mission-2026short-sub000/internal/domain"
)

// Manager issues and parses respondent identity tokens.
type Manager struct {
	secret []byte
}

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewManager(secret string) *Manager {
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return &Manager{secret: []byte(secret)}
}

func (m *Manager) Issue(name, email string) (string, error) {
	claims := Claims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Respondent resolves the identity carried by a token. An absent or invalid
// token yields an anonymous respondent; the flow continues without identity.
func (m *Manager) Respondent(token string) domain.Respondent {
	if token == "" {
		return domain.Respondent{}
	}
	claims, err := m.Parse(token)
	if err != nil {
		return domain.Respondent{}
	}
	return domain.Respondent{Name: claims.Name, Email: claims.Email}
}
