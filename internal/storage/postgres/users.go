package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

const userColumns = `id, email, first_name, last_name, role, created_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.NewNotFoundError("user", id)
		}
		return nil, wrap("get user", err)
	}
	return u, nil
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, user model.User) (*model.User, bool, error) {
	const query = `INSERT INTO users (id, email, first_name, last_name, role) VALUES ($1, $2, $3, $4, $5)
                   ON CONFLICT (id) DO NOTHING
                   RETURNING created_at`
	err := r.storage.pool.QueryRow(ctx, query, user.ID, user.Email, user.FirstName, user.LastName, user.Role).Scan(&user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.GetByID(ctx, user.ID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, wrap("create user", err)
	}
	return &user, true, nil
}

func (r *userRepository) RaiseRole(ctx context.Context, id string, role model.Role, replaceable []model.Role) (*model.User, bool, error) {
	const query = `UPDATE users SET role=$1 WHERE id=$2 AND role = ANY($3) RETURNING ` + userColumns
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, role, id, roleNames(replaceable)))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, wrap("raise user role", err)
	}
	// either the user is gone or a concurrent login already stored an equal or higher role
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func roleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}

func (r *userRepository) FindByRoleIn(ctx context.Context, roles []model.Role) ([]model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, roleNames(roles))
	if err != nil {
		return nil, wrap("find users by role", err)
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("scan user", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("find users by role", err)
	}
	return result, nil
}
