package authservice

import (
	"context"
	"errors"
	"strings"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/metrics"
	"grandaura/internal/pkg/password"
	"grandaura/internal/pkg/validation"
)

// AuthService verifica credenciais contra as seis coleções de principais e
// resolve exatamente uma role por login bem-sucedido.
type AuthService struct {
	Stores           domain.Stores
	Encoder          password.Encoder
	Dispatch         domain.DispatchMode
	CrossStoreUnique bool
	logger           logger.Logger
}

// Options agrupa as políticas configuráveis do serviço.
type Options struct {
	Dispatch         domain.DispatchMode
	CrossStoreUnique bool
}

// NewService cria o AuthService, injetando as coleções e a política de credenciais.
func NewService(stores domain.Stores, encoder password.Encoder, opts Options, logger logger.Logger) *AuthService {
	if opts.Dispatch == "" {
		opts.Dispatch = domain.DispatchCustomer
	}
	return &AuthService{
		Stores:           stores,
		Encoder:          encoder,
		Dispatch:         opts.Dispatch,
		CrossStoreUnique: opts.CrossStoreUnique,
		logger:           logger,
	}
}

// Authenticate verifica a tentativa de login. Em caso de falha devolve um
// *apperror.CredentialError cujo motivo (NotFound, Mismatch, Disabled) só é
// visível internamente. Não há efeitos colaterais além de logs e métricas.
func (s *AuthService) Authenticate(ctx context.Context, attempt domain.LoginAttempt) (domain.AuthContext, error) {
	s.logger.Debug("Iniciando autenticação.", map[string]interface{}{"email_attempt": attempt.Email, "role": attempt.Role})

	principal, err := s.lookup(ctx, attempt)
	if err != nil {
		return domain.AuthContext{}, s.fail(attempt, "", err)
	}

	// 1. Credencial primeiro; o estado "disabled" só é revelado (internamente) com a credencial correta.
	if !s.Encoder.Matches(attempt.Password, principal.PasswordHash) {
		return domain.AuthContext{}, s.fail(attempt, principal.Role, apperror.NewCredentialError(apperror.ReasonMismatch))
	}

	// 2. Principal desativado falha mesmo com credencial correta.
	if !principal.Enabled {
		return domain.AuthContext{}, s.fail(attempt, principal.Role, apperror.NewCredentialError(apperror.ReasonDisabled))
	}

	metrics.LoginAttempts.WithLabelValues(string(principal.Role), "success").Inc()
	s.logger.Info("Autenticação bem-sucedida.", map[string]interface{}{"principal_id": principal.ID, "role": principal.Role})

	return domain.AuthContext{
		PrincipalID: principal.ID,
		Email:       principal.Email,
		Role:        principal.Role,
		Enabled:     principal.Enabled,
	}, nil
}

// lookup escolhe a coleção: a role enviada pelo formulário, ou a política do
// formulário genérico (apenas clientes, ou sondagem por prioridade).
func (s *AuthService) lookup(ctx context.Context, attempt domain.LoginAttempt) (domain.Principal, error) {
	if attempt.Email == "" {
		return domain.Principal{}, apperror.NewCredentialError(apperror.ReasonNotFound)
	}

	if attempt.Role != "" {
		return s.findIn(ctx, attempt.Role, attempt.Email)
	}

	if s.Dispatch != domain.DispatchPriority {
		return s.findIn(ctx, domain.RoleCustomer, attempt.Email)
	}

	for _, role := range domain.AllRoles() {
		principal, err := s.findIn(ctx, role, attempt.Email)
		if err == nil {
			return principal, nil
		}
		if reason, ok := apperror.CredentialFailureReason(err); ok && reason == apperror.ReasonNotFound {
			continue
		}
		return domain.Principal{}, err
	}
	return domain.Principal{}, apperror.NewCredentialError(apperror.ReasonNotFound)
}

func (s *AuthService) findIn(ctx context.Context, role domain.Role, email string) (domain.Principal, error) {
	store, ok := s.Stores[role]
	if !ok {
		return domain.Principal{}, apperror.NewCredentialError(apperror.ReasonNotFound)
	}

	principal, err := store.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Principal{}, apperror.NewCredentialError(apperror.ReasonNotFound)
		}
		return domain.Principal{}, err
	}
	principal.Role = store.Role()
	return principal, nil
}

func (s *AuthService) fail(attempt domain.LoginAttempt, role domain.Role, err error) error {
	if role == "" {
		role = attempt.Role
	}
	roleLabel := string(role)
	if roleLabel == "" {
		roleLabel = "unknown"
	}

	reason, ok := apperror.CredentialFailureReason(err)
	if !ok {
		metrics.LoginAttempts.WithLabelValues(roleLabel, "error").Inc()
		s.logger.Error("Falha de infraestrutura durante a autenticação.", err)
		return err
	}

	metrics.LoginAttempts.WithLabelValues(roleLabel, string(reason)).Inc()
	s.logger.Warn("Credenciais rejeitadas.", map[string]interface{}{
		"email_attempt": attempt.Email,
		"role":          roleLabel,
		"reason":        reason,
	})
	return err
}

// EnsureEmailAvailable devolve ConflictError se o email já existir na coleção da
// role ou, com unicidade entre coleções ligada, em qualquer coleção.
func (s *AuthService) EnsureEmailAvailable(ctx context.Context, role domain.Role, email string) error {
	roles := []domain.Role{role}
	if s.CrossStoreUnique {
		roles = domain.AllRoles()
	}

	for _, r := range roles {
		store, ok := s.Stores[r]
		if !ok {
			continue
		}
		_, err := store.FindByEmail(ctx, email)
		if err == nil {
			return apperror.NewConflictError("An account with this email already exists.")
		}
		var notFound *apperror.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// Register cria um novo CUSTOMER ativo com a credencial codificada pela política configurada.
func (s *AuthService) Register(ctx context.Context, registration domain.Registration) (domain.Principal, error) {
	registration.Email = strings.TrimSpace(registration.Email)
	s.logger.Debug("Iniciando registro de cliente.", map[string]interface{}{"email": registration.Email})

	// 1. Validação
	if err := validation.ValidateStruct(&registration); err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return domain.Principal{}, err
	}

	// 2. Unicidade
	if err := s.EnsureEmailAvailable(ctx, domain.RoleCustomer, registration.Email); err != nil {
		metrics.Registrations.WithLabelValues("conflict").Inc()
		s.logger.Warn("Registro recusado: email em uso.", map[string]interface{}{"email": registration.Email})
		return domain.Principal{}, err
	}

	// 3. Codificação da credencial
	hash, err := s.Encoder.Encode(registration.Password)
	if err != nil {
		err = password.EncodeFailure(err)
		var validationErr *apperror.ValidationError
		if errors.As(err, &validationErr) {
			metrics.Registrations.WithLabelValues("invalid").Inc()
		} else {
			metrics.Registrations.WithLabelValues("error").Inc()
		}
		return domain.Principal{}, err
	}

	// 4. Persistência
	principal, err := s.Stores[domain.RoleCustomer].Save(ctx, domain.Principal{
		Email:        registration.Email,
		PasswordHash: hash,
		Enabled:      true,
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		var conflict *apperror.ConflictError
		if errors.As(err, &conflict) {
			metrics.Registrations.WithLabelValues("conflict").Inc()
		} else {
			metrics.Registrations.WithLabelValues("error").Inc()
		}
		return domain.Principal{}, err
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	s.logger.Info("Cliente registrado.", map[string]interface{}{"principal_id": principal.ID})
	return principal, nil
}
