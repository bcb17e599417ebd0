package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhattran/cardfolio/internal/domain/user"
	"github.com/nhattran/cardfolio/pkg/apperror"
)

type postgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(db *pgxpool.Pool) user.Repository {
	return &postgresUserRepo{db: db}
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash
		FROM users
		WHERE email = $1
	`
	u := &user.User{}

	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewUnauthorized("user not exist", nil)
		}
		return nil, apperror.NewInternal("error when query user", err)
	}

	return u, nil
}
