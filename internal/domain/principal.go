package domain

import (
	"context"
	"time"
)

// Principal representa uma identidade armazenada capaz de autenticar.
// Cada role guarda os seus principais numa coleção própria; o Email é único
// dentro dessa coleção mas não necessariamente entre coleções.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Nunca sai no JSON de resposta
	Enabled      bool      `json:"enabled"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	Department   string    `json:"department,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Version      int       `json:"version"` // Controle de concorrência otimista
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PrincipalStore é o contrato de persistência de UMA coleção de principais (uma role).
type PrincipalStore interface {
	Role() Role
	FindByID(ctx context.Context, id string) (Principal, error)
	FindByEmail(ctx context.Context, email string) (Principal, error)
	FindAll(ctx context.Context) ([]Principal, error)
	// Save insere quando ID está vazio; caso contrário atualiza verificando Version.
	Save(ctx context.Context, principal Principal) (Principal, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Stores mapeia cada role para a sua coleção.
type Stores map[Role]PrincipalStore

// Registration é o payload de registro de um novo CUSTOMER.
type Registration struct {
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// NewPrincipalRequest é o payload administrativo de criação de principal de qualquer role.
type NewPrincipalRequest struct {
	Role        Role   `json:"role" validate:"required"`
	Email       string `json:"email" validate:"required,email,max=160"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Department  string `json:"department" validate:"max=100"`
	PhoneNumber string `json:"phone_number" validate:"max=30"`
	Enabled     bool   `json:"enabled"`
}

// PrincipalUpdate descreve uma alteração administrativa (nome, email, estado).
type PrincipalUpdate struct {
	DisplayName string `validate:"max=100"`
	Email       string `validate:"required,email,max=160"`
	Enabled     bool
}

// ProfileUpdate descreve a atualização self-service do próprio perfil.
// A senha só muda quando NewPassword é informado, exigindo CurrentPassword.
type ProfileUpdate struct {
	DisplayName     string `validate:"max=100"`
	Department      string `validate:"max=100"`
	PhoneNumber     string `validate:"max=30"`
	CurrentPassword string
	NewPassword     string `validate:"omitempty,min=8,max=72"`
}

// SeedPrincipal é um principal padrão criado no arranque quando a coleção está vazia.
type SeedPrincipal struct {
	Role        Role
	Email       string
	Password    string
	DisplayName string
	Department  string
	PhoneNumber string
}

// DefaultSeedPrincipals devolve as contas de demonstração de cada role de staff.
func DefaultSeedPrincipals() []SeedPrincipal {
	return []SeedPrincipal{
		{Role: RoleHotelOwner, Email: "hotel.owner@grandaura.com", Password: "hotel123", DisplayName: "John Smith", Department: "Grand Aura Hotel"},
		{Role: RoleEventCoordinator, Email: "coordinator@grandaura.com", Password: "coordinator123", DisplayName: "Sarah Johnson", Department: "Wedding Planning", PhoneNumber: "+1-555-0123"},
		{Role: RoleSystemAdmin, Email: "admin@grandaura.com", Password: "admin123", DisplayName: "Admin User", Department: "IT Administration", PhoneNumber: "+1-555-0000"},
		{Role: RoleCateringManager, Email: "catering@grandaura.com", Password: "catering123", DisplayName: "Michael Chen", Department: "Catering Services", PhoneNumber: "+1-555-0124"},
		{Role: RoleFrontDesk, Email: "frontdesk@grandaura.com", Password: "frontdesk123", DisplayName: "Sarah Johnson", Department: "Reception", PhoneNumber: "+1-555-0125"},
	}
}
