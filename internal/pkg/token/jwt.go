package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"grandaura/internal/domain"
)

const issuer = "GrandAura-Gateway"

// CustomClaims carrega o Authentication Context dentro do JWT.
// É obrigatório incorporar jwt.RegisteredClaims.
type CustomClaims struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Enabled     bool   `json:"enabled"`
	Generation  int64  `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

// Service emite e valida os tokens de sessão.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	now       func() time.Time
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		now:       time.Now,
	}
}

// Expiry é a duração de vida de um token emitido.
func (s *Service) Expiry() time.Duration { return s.expiry }

// GenerateToken cria um JWT assinado para a identidade autenticada.
// O ID do token (jti) é a chave usada para revogação no logout.
func (s *Service) GenerateToken(auth domain.AuthContext) (string, domain.AuthContext, error) {
	now := s.now()
	auth.SessionID = uuid.NewString()
	auth.ExpiresAt = now.Add(s.expiry)

	claims := CustomClaims{
		PrincipalID: auth.PrincipalID,
		Email:       auth.Email,
		Role:        string(auth.Role),
		Enabled:     auth.Enabled,
		Generation:  auth.Generation,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        auth.SessionID,
			ExpiresAt: jwt.NewNumericDate(auth.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   auth.PrincipalID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", domain.AuthContext{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, auth, nil
}

// ValidateToken valida o token e reconstrói o Authentication Context.
func (s *Service) ValidateToken(tokenString string) (domain.AuthContext, error) {
	claims := &CustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.AuthContext{}, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return domain.AuthContext{}, errors.New("token is not valid")
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.AuthContext{}, fmt.Errorf("token carries unknown role %q", claims.Role)
	}

	auth := domain.AuthContext{
		PrincipalID: claims.PrincipalID,
		Email:       claims.Email,
		Role:        role,
		Enabled:     claims.Enabled,
		SessionID:   claims.ID,
		Generation:  claims.Generation,
	}
	if claims.ExpiresAt != nil {
		auth.ExpiresAt = claims.ExpiresAt.Time
	}
	return auth, nil
}
