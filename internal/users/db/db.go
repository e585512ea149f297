package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ms-users/internal/models"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for a UNIQUE constraint.
const pgUniqueViolation = "23505"

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateSchema(ctx context.Context) error {
	_, err := d.Bun.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// DropSchema is used by the seed command's reset mode.
func (d *DB) DropSchema(ctx context.Context) error {
	_, err := d.Bun.NewDropTable().
		Model((*models.User)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	return nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := d.Bun.NewSelect().
		Model(&users).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (d *DB) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := d.Bun.NewInsert().
		Model(user).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (d *DB) UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error) {
	var updated []models.User
	err := d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("name = ?", name).
		Set("email = ?", email).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx, &updated)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrEmailExists
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if len(updated) == 0 {
		return nil, models.ErrUserNotFound
	}
	return &updated[0], nil
}

// DeleteUser does not report whether a row existed.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	// modernc and mattn sqlite drivers both report "UNIQUE constraint failed: users.email"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
