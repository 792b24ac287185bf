package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/dmitrijs2005/usuarios/internal/dbx"
	"github.com/dmitrijs2005/usuarios/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `id, nombre, email, password, confirmado, token, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB, *sql.Conn or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO usuarios (id, nombre, email, password, confirmado, token)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Nombre, NormalizeEmail(account.Email), account.Password, account.Confirmado, account.Token).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return wrapError(err)
	}

	account.Email = NormalizeEmail(account.Email)
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM usuarios WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM usuarios WHERE email = $1`, NormalizeEmail(email))
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM usuarios WHERE token = $1`, token)
}

func (r *PostgresRepository) SetToken(ctx context.Context, email string, token string) (*models.Account, error) {
	query :=
		`UPDATE usuarios SET token = $2, updated_at = now()
		 WHERE email = $1
		 RETURNING ` + selectColumns

	return r.getOne(ctx, query, NormalizeEmail(email), token)
}

func (r *PostgresRepository) Confirm(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorNotFound
	}

	query :=
		`UPDATE usuarios SET confirmado = TRUE, token = '', updated_at = now()
		 WHERE token = $1
		 RETURNING id
		 `

	return r.returningID(ctx, query, token)
}

func (r *PostgresRepository) ResetPassword(ctx context.Context, token string, passwordHash string) (string, error) {
	if token == "" {
		return "", common.ErrorNotFound
	}

	query :=
		`UPDATE usuarios SET password = $2, token = '', updated_at = now()
		 WHERE token = $1
		 RETURNING id
		 `

	return r.returningID(ctx, query, token, passwordHash)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, changes models.AccountChanges) error {
	if changes.Empty() {
		_, err := r.GetByID(ctx, id)
		return err
	}

	sets := make([]string, 0, 4)
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Nombre != nil {
		add("nombre", *changes.Nombre)
	}
	if changes.Email != nil {
		add("email", NormalizeEmail(*changes.Email))
	}
	if changes.Password != nil {
		add("password", *changes.Password)
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE usuarios SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING id`

	_, err := r.returningID(ctx, query, args...)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM usuarios ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrapError(err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	err := s.Scan(&a.ID, &a.Nombre, &a.Email, &a.Password, &a.Confirmado, &a.Token, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapError(err)
	}
	return a, nil
}

func (r *PostgresRepository) returningID(ctx context.Context, query string, args ...any) (string, error) {
	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", wrapError(err)
	}
	return id, nil
}

// wrapError maps driver errors onto the common sentinels.
func wrapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrorConflict, pgErr.ConstraintName)
	}

	return fmt.Errorf("db error: %w", err)
}
