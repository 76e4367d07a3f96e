package principalrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// uniqueViolation é o SQLSTATE do PostgreSQL para violação de UNIQUE.
const uniqueViolation = "23505"

const columns = `id, email, password_hash, enabled, display_name, department, phone_number, version, created_at, updated_at`

// PrincipalRepository implementa domain.PrincipalStore sobre UMA tabela PostgreSQL.
// As seis tabelas têm o mesmo formato; só o nome muda por role.
type PrincipalRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	role      domain.Role
	SQLs      struct {
		FindByID    string
		FindByEmail string
		FindAll     string
		Insert      string
		Update      string
		Delete      string
		Count       string
	}
	logger logger.Logger
}

// NewPrincipalRepository cria o repositório da role, montando as queries sobre a tabela dela.
func NewPrincipalRepository(db *sql.DB, dbTimeout time.Duration, role domain.Role, logger logger.Logger) *PrincipalRepository {
	table := role.Table()

	r := &PrincipalRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		role:      role,
		logger:    logger,
	}
	r.SQLs.FindByID = fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columns, table)
	r.SQLs.FindByEmail = fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, columns, table)
	r.SQLs.FindAll = fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, email`, columns, table)
	r.SQLs.Insert = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, table, columns)
	r.SQLs.Update = fmt.Sprintf(`
        UPDATE %s
        SET email = $1, password_hash = $2, enabled = $3, display_name = $4, department = $5,
            phone_number = $6, version = $7, updated_at = $8
        WHERE id = $9 AND version = $10
        RETURNING created_at`, table)
	r.SQLs.Delete = fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	r.SQLs.Count = fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
	return r
}

// NewStores cria um repositório PostgreSQL para cada uma das seis roles.
func NewStores(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) domain.Stores {
	stores := make(domain.Stores, len(domain.AllRoles()))
	for _, role := range domain.AllRoles() {
		stores[role] = NewPrincipalRepository(db, dbTimeout, role, logger)
	}
	return stores
}

func (r *PrincipalRepository) Role() domain.Role { return r.role }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PrincipalRepository) scan(row rowScanner) (domain.Principal, error) {
	var p domain.Principal
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.Enabled,
		&p.DisplayName,
		&p.Department,
		&p.PhoneNumber,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Role = r.role
	return p, err
}

// FindByID busca um principal pelo ID.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (domain.Principal, error) {
	r.logger.Debug("Buscando principal por ID.", map[string]interface{}{"role": r.role, "principal_id": id})

	// A coluna id é UUID: um ID malformado nunca existe e não deve chegar ao Postgres.
	if !isValidID(id) {
		return domain.Principal{}, r.notFoundByID(id)
	}

	// 1. Configura Contexto com Timeout
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	p, err := r.scan(r.DB.QueryRowContext(ctxTimeout, r.SQLs.FindByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Principal{}, r.notFoundByID(id)
		}
		r.logger.Error("Falha ao buscar principal por ID no DB.", err)
		return domain.Principal{}, apperror.NewDBError("failed to find principal by id", err)
	}
	return p, nil
}

// FindByEmail busca um principal pelo email (comparação exata).
func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (domain.Principal, error) {
	r.logger.Debug("Buscando principal por email.", map[string]interface{}{"role": r.role, "email_attempt": email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	p, err := r.scan(r.DB.QueryRowContext(ctxTimeout, r.SQLs.FindByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Não é erro de infraestrutura: o serviço decide se vira NotFound de credencial.
			return domain.Principal{}, apperror.NewNotFoundError(fmt.Sprintf("%s with email '%s'", r.role.Label(), email))
		}
		r.logger.Error("Falha ao buscar principal por email no DB.", err)
		return domain.Principal{}, apperror.NewDBError("failed to find principal by email", err)
	}
	return p, nil
}

// FindAll lista todos os principais da tabela.
func (r *PrincipalRepository) FindAll(ctx context.Context) ([]domain.Principal, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, r.SQLs.FindAll)
	if err != nil {
		r.logger.Error("Falha ao listar principais no DB.", err)
		return nil, apperror.NewDBError("failed to list principals", err)
	}
	defer rows.Close()

	principals := []domain.Principal{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear linha de principal.", err)
			return nil, apperror.NewDBError("failed to scan principal", err)
		}
		principals = append(principals, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Erro durante a iteração das linhas de principais.", err)
		return nil, apperror.NewDBError("failed to iterate principals", err)
	}

	r.logger.Debug("Principais listados.", map[string]interface{}{"role": r.role, "count": len(principals)})
	return principals, nil
}

// Save insere (ID vazio) ou atualiza com controle de concorrência otimista.
func (r *PrincipalRepository) Save(ctx context.Context, principal domain.Principal) (domain.Principal, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	principal.Role = r.role
	now := time.Now().UTC()

	if principal.ID == "" {
		principal.ID = uuid.NewString()
		principal.Version = 1
		principal.CreatedAt = now
		principal.UpdatedAt = now

		_, err := r.DB.ExecContext(ctxTimeout, r.SQLs.Insert,
			principal.ID,
			principal.Email,
			principal.PasswordHash,
			principal.Enabled,
			principal.DisplayName,
			principal.Department,
			principal.PhoneNumber,
			principal.Version,
			principal.CreatedAt,
			principal.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				r.logger.Warn("Email já existe nesta coleção.", map[string]interface{}{"role": r.role, "email": principal.Email})
				return domain.Principal{}, apperror.NewConflictError("An account with this email already exists.")
			}
			r.logger.Error("Falha ao inserir principal no DB.", err)
			return domain.Principal{}, apperror.NewDBError("failed to insert principal", err)
		}

		r.logger.Info("Principal criado.", map[string]interface{}{"role": r.role, "principal_id": principal.ID})
		return principal, nil
	}

	if !isValidID(principal.ID) {
		return domain.Principal{}, r.notFoundByID(principal.ID)
	}

	// Atualização com OCC: só aplica se a versão lida ainda for a atual.
	expected := principal.Version
	principal.Version = expected + 1
	principal.UpdatedAt = now

	err := r.DB.QueryRowContext(ctxTimeout, r.SQLs.Update,
		principal.Email,
		principal.PasswordHash,
		principal.Enabled,
		principal.DisplayName,
		principal.Department,
		principal.PhoneNumber,
		principal.Version,
		principal.UpdatedAt,
		principal.ID,
		expected,
	).Scan(&principal.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, findErr := r.FindByID(ctx, principal.ID); findErr != nil {
				return domain.Principal{}, findErr
			}
			r.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
				"role":             r.role,
				"principal_id":     principal.ID,
				"expected_version": expected,
			})
			return domain.Principal{}, apperror.NewConflictError("The account was modified by another operation. Please try again.")
		}
		if isUniqueViolation(err) {
			return domain.Principal{}, apperror.NewConflictError("An account with this email already exists.")
		}
		r.logger.Error("Falha ao atualizar principal no DB.", err)
		return domain.Principal{}, apperror.NewDBError("failed to update principal", err)
	}

	r.logger.Info("Principal atualizado.", map[string]interface{}{"role": r.role, "principal_id": principal.ID, "new_version": principal.Version})
	return principal, nil
}

// Delete remove o principal pelo ID.
func (r *PrincipalRepository) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return r.notFoundByID(id)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, r.SQLs.Delete, id)
	if err != nil {
		r.logger.Error("Falha ao remover principal no DB.", err)
		return apperror.NewDBError("failed to delete principal", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to check affected rows", err)
	}
	if rowsAffected == 0 {
		return r.notFoundByID(id)
	}

	r.logger.Info("Principal removido.", map[string]interface{}{"role": r.role, "principal_id": id})
	return nil
}

// Count conta os principais da tabela (usado pelo seeding).
func (r *PrincipalRepository) Count(ctx context.Context) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var n int
	if err := r.DB.QueryRowContext(ctxTimeout, r.SQLs.Count).Scan(&n); err != nil {
		r.logger.Error("Falha ao contar principais no DB.", err)
		return 0, apperror.NewDBError("failed to count principals", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (r *PrincipalRepository) notFoundByID(id string) error {
	return apperror.NewNotFoundError(fmt.Sprintf("%s with id '%s'", r.role.Label(), id))
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
