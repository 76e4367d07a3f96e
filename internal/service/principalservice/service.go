package principalservice

import (
	"context"
	"fmt"
	"strings"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/password"
	"grandaura/internal/pkg/validation"
)

// EmailPolicy é o contrato de unicidade de emails (implementado pelo AuthService).
type EmailPolicy interface {
	EnsureEmailAvailable(ctx context.Context, role domain.Role, email string) error
}

// SessionSuspender invalida as sessões já emitidas de um principal (implementado pelo session.Manager).
type SessionSuspender interface {
	SuspendPrincipal(ctx context.Context, role domain.Role, principalID string) error
}

// PrincipalService gere os principais das seis coleções: seeding, administração e perfil.
type PrincipalService struct {
	Stores   domain.Stores
	Encoder  password.Encoder
	Emails   EmailPolicy
	Sessions SessionSuspender // nil = sem sessões a invalidar (e.g. CLI de seed)
	logger   logger.Logger
}

// NewService cria uma nova instância do PrincipalService.
func NewService(stores domain.Stores, encoder password.Encoder, emails EmailPolicy, sessions SessionSuspender, logger logger.Logger) *PrincipalService {
	return &PrincipalService{
		Stores:   stores,
		Encoder:  encoder,
		Emails:   emails,
		Sessions: sessions,
		logger:   logger,
	}
}

// suspendSessions corta as sessões ativas de um principal desativado ou removido.
func (s *PrincipalService) suspendSessions(ctx context.Context, role domain.Role, id string) error {
	if s.Sessions == nil {
		return nil
	}
	if err := s.Sessions.SuspendPrincipal(ctx, role, id); err != nil {
		s.logger.Error("Falha ao invalidar sessões do principal.", err)
		return apperror.NewInternalError("failed to end the principal's sessions", err)
	}
	return nil
}

func (s *PrincipalService) store(role domain.Role) (domain.PrincipalStore, error) {
	store, ok := s.Stores[role]
	if !ok {
		return nil, apperror.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	return store, nil
}

// Seed cria os principais padrão nas coleções que estão vazias no arranque.
// Coleções que já têm registros não são tocadas.
func (s *PrincipalService) Seed(ctx context.Context, seeds []domain.SeedPrincipal) (int, error) {
	empty := map[domain.Role]bool{}
	for _, seed := range seeds {
		if _, checked := empty[seed.Role]; checked {
			continue
		}
		store, err := s.store(seed.Role)
		if err != nil {
			return 0, err
		}
		n, err := store.Count(ctx)
		if err != nil {
			return 0, err
		}
		empty[seed.Role] = n == 0
	}

	created := 0
	for _, seed := range seeds {
		if !empty[seed.Role] {
			continue
		}
		hash, err := s.Encoder.Encode(seed.Password)
		if err != nil {
			return created, apperror.NewInternalError("failed to encode seed credential", err)
		}
		if _, err := s.Stores[seed.Role].Save(ctx, domain.Principal{
			Email:        seed.Email,
			PasswordHash: hash,
			Enabled:      true,
			DisplayName:  seed.DisplayName,
			Department:   seed.Department,
			PhoneNumber:  seed.PhoneNumber,
		}); err != nil {
			return created, err
		}
		created++
		s.logger.Info("Principal padrão criado.", map[string]interface{}{"role": seed.Role, "email": seed.Email})
	}
	return created, nil
}

// Create cria um principal de qualquer role (fluxo administrativo).
func (s *PrincipalService) Create(ctx context.Context, req domain.NewPrincipalRequest) (domain.Principal, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.ValidateStruct(&req); err != nil {
		return domain.Principal{}, err
	}
	store, err := s.store(req.Role)
	if err != nil {
		return domain.Principal{}, err
	}
	if err := s.Emails.EnsureEmailAvailable(ctx, req.Role, req.Email); err != nil {
		return domain.Principal{}, err
	}

	hash, err := s.Encoder.Encode(req.Password)
	if err != nil {
		return domain.Principal{}, password.EncodeFailure(err)
	}

	principal, err := store.Save(ctx, domain.Principal{
		Email:        req.Email,
		PasswordHash: hash,
		Enabled:      req.Enabled,
		DisplayName:  req.DisplayName,
		Department:   req.Department,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		return domain.Principal{}, err
	}

	s.logger.Info("Principal criado pelo administrador.", map[string]interface{}{"role": req.Role, "principal_id": principal.ID})
	return principal, nil
}

// ListAll devolve os principais de todas as coleções, pela ordem de prioridade das roles.
func (s *PrincipalService) ListAll(ctx context.Context) ([]domain.Principal, error) {
	all := []domain.Principal{}
	for _, role := range domain.AllRoles() {
		store, ok := s.Stores[role]
		if !ok {
			continue
		}
		principals, err := store.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, principals...)
	}
	return all, nil
}

// Get busca um principal pela role e ID.
func (s *PrincipalService) Get(ctx context.Context, role domain.Role, id string) (domain.Principal, error) {
	store, err := s.store(role)
	if err != nil {
		return domain.Principal{}, err
	}
	return store.FindByID(ctx, id)
}

// Update aplica uma alteração administrativa de nome, email e estado.
func (s *PrincipalService) Update(ctx context.Context, role domain.Role, id string, update domain.PrincipalUpdate) (domain.Principal, error) {
	update.Email = strings.TrimSpace(update.Email)
	if err := validation.ValidateStruct(&update); err != nil {
		return domain.Principal{}, err
	}

	current, err := s.Get(ctx, role, id)
	if err != nil {
		return domain.Principal{}, err
	}
	if update.Email != current.Email {
		if err := s.Emails.EnsureEmailAvailable(ctx, role, update.Email); err != nil {
			return domain.Principal{}, err
		}
	}

	current.DisplayName = update.DisplayName
	current.Email = update.Email
	current.Enabled = update.Enabled

	updated, err := s.Stores[role].Save(ctx, current)
	if err != nil {
		return domain.Principal{}, err
	}
	if !updated.Enabled {
		if err := s.suspendSessions(ctx, role, id); err != nil {
			return domain.Principal{}, err
		}
	}
	s.logger.Info("Principal atualizado pelo administrador.", map[string]interface{}{"role": role, "principal_id": id, "enabled": updated.Enabled})
	return updated, nil
}

// Toggle inverte o estado enabled. Desativar encerra as sessões já emitidas.
func (s *PrincipalService) Toggle(ctx context.Context, role domain.Role, id string) (domain.Principal, error) {
	current, err := s.Get(ctx, role, id)
	if err != nil {
		return domain.Principal{}, err
	}
	current.Enabled = !current.Enabled

	updated, err := s.Stores[role].Save(ctx, current)
	if err != nil {
		return domain.Principal{}, err
	}
	if !updated.Enabled {
		if err := s.suspendSessions(ctx, role, id); err != nil {
			return domain.Principal{}, err
		}
	}
	s.logger.Info("Estado do principal alterado.", map[string]interface{}{"role": role, "principal_id": id, "enabled": updated.Enabled})
	return updated, nil
}

// Delete remove o principal da coleção da role. Não há cascata entre coleções.
func (s *PrincipalService) Delete(ctx context.Context, role domain.Role, id string) error {
	store, err := s.store(role)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.suspendSessions(ctx, role, id); err != nil {
		return err
	}
	s.logger.Info("Principal removido pelo administrador.", map[string]interface{}{"role": role, "principal_id": id})
	return nil
}

// GetProfile devolve o principal da sessão atual.
func (s *PrincipalService) GetProfile(ctx context.Context, auth domain.AuthContext) (domain.Principal, error) {
	return s.Get(ctx, auth.Role, auth.PrincipalID)
}

// UpdateProfile relê o principal e funde apenas os campos editáveis, preservando
// email, hash e estado. A troca de senha exige a senha atual.
func (s *PrincipalService) UpdateProfile(ctx context.Context, auth domain.AuthContext, update domain.ProfileUpdate) (domain.Principal, error) {
	if err := validation.ValidateStruct(&update); err != nil {
		return domain.Principal{}, err
	}

	current, err := s.GetProfile(ctx, auth)
	if err != nil {
		return domain.Principal{}, err
	}

	current.DisplayName = strings.TrimSpace(update.DisplayName)
	current.Department = strings.TrimSpace(update.Department)
	current.PhoneNumber = strings.TrimSpace(update.PhoneNumber)

	if update.NewPassword != "" {
		if !s.Encoder.Matches(update.CurrentPassword, current.PasswordHash) {
			s.logger.Warn("Troca de senha recusada: senha atual incorreta.", map[string]interface{}{"principal_id": auth.PrincipalID, "role": auth.Role})
			return domain.Principal{}, apperror.NewValidationError("Current password is incorrect.")
		}
		hash, err := s.Encoder.Encode(update.NewPassword)
		if err != nil {
			return domain.Principal{}, password.EncodeFailure(err)
		}
		current.PasswordHash = hash
	}

	updated, err := s.Stores[auth.Role].Save(ctx, current)
	if err != nil {
		return domain.Principal{}, err
	}
	s.logger.Info("Perfil atualizado.", map[string]interface{}{"principal_id": auth.PrincipalID, "role": auth.Role, "password_changed": update.NewPassword != ""})
	return updated, nil
}
