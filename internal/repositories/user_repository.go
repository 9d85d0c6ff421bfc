package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"motorent/internal/domain"
	"motorent/internal/domain/models"
)

type UserRepository struct {
	base
}

func NewUserRepository(conn *sql.DB, driver string) UserRepository {
	return UserRepository{base{DB: conn, Driver: driver}}
}

const userSelect = `SELECT id, name, email, COALESCE(phone, ''), password_hash, role, COALESCE(vendor_id, 0), status FROM users`

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.VendorID, &u.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.conn().QueryRowContext(ctx, r.q(userSelect+" WHERE LOWER(email) = ?"), email))
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(r.conn().QueryRowContext(ctx, r.q(userSelect+" WHERE id = ?"), id))
}
