package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

const userColumns = `id, nome, email, senha, tipo, localizacao`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		role string
		loc  sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &loc); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Location = nullable(loc)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (nome, email, senha, tipo, localizacao) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.Location,
	)
	if err != nil {
		if err := translate(err); errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = id
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM usuarios WHERE email = ?`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, page ports.Page) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM usuarios ORDER BY id LIMIT ? OFFSET ?`,
		page.Limit, page.Skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes the user and their products in one transaction. The
// products are deleted explicitly so tables created without the cascading
// foreign key behave the same.
func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	defer rollback(tx)

	u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM produtos WHERE produtor_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete products of user %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM usuarios WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete user: commit: %w", err)
	}
	return u, nil
}
