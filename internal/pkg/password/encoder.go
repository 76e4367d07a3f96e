package password

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperror "grandaura/internal/errors"
)

// MaxBcryptBytes é o limite do bcrypt; acima dele GenerateFromPassword falha.
const MaxBcryptBytes = 72

// Policy identifica a estratégia de verificação de credenciais escolhida no arranque.
type Policy string

const (
	// PolicyBcrypt guarda um hash bcrypt com salt. É a política padrão.
	PolicyBcrypt Policy = "bcrypt"
	// PolicyPlaintext guarda a credencial em claro. Obsoleta; só para testes/desenvolvimento.
	PolicyPlaintext Policy = "plaintext"
)

// Encoder é a estratégia injetada na verificação de credenciais.
type Encoder interface {
	Policy() Policy
	Encode(raw string) (string, error)
	Matches(raw, stored string) bool
}

// NewEncoder constrói o Encoder da política configurada.
func NewEncoder(policy Policy, bcryptCost int) (Encoder, error) {
	switch Policy(strings.ToLower(string(policy))) {
	case PolicyBcrypt, "":
		return NewBcryptEncoder(bcryptCost)
	case PolicyPlaintext:
		return PlaintextEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown credential policy %q", policy)
	}
}

// BcryptEncoder implementa a política B (hash com salt, verify por recomputação).
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder valida o custo; 0 usa bcrypt.DefaultCost.
func NewBcryptEncoder(cost int) (*BcryptEncoder, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptEncoder{cost: cost}, nil
}

func (e *BcryptEncoder) Policy() Policy { return PolicyBcrypt }

// Encode recusa credenciais acima de MaxBcryptBytes com um ValidationError:
// o limite do validator conta runas, não bytes.
func (e *BcryptEncoder) Encode(raw string) (string, error) {
	if len(raw) > MaxBcryptBytes {
		return "", apperror.NewValidationError(fmt.Sprintf("password must be at most %d bytes", MaxBcryptBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), e.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// Matches devolve false para hashes malformados em vez de propagar o erro.
func (e *BcryptEncoder) Matches(raw, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw)) == nil
}

// PlaintextEncoder implementa a política A: o valor guardado É a credencial.
type PlaintextEncoder struct{}

func (PlaintextEncoder) Policy() Policy { return PolicyPlaintext }

func (PlaintextEncoder) Encode(raw string) (string, error) { return raw, nil }

func (PlaintextEncoder) Matches(raw, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(raw), []byte(stored)) == 1
}

// EncodeFailure preserva o ValidationError de Encode (erro do cliente);
// qualquer outra falha vira InternalError.
func EncodeFailure(err error) error {
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	return apperror.NewInternalError("failed to encode credential", err)
}
