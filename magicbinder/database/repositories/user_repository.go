package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetOrCreate(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	*BaseRepository
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.GetDB().NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(timeoutCtx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user", id, err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.GetDB().NewSelect().
		Model(user).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Scan(timeoutCtx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "user", ID: username}
	}
	if err != nil {
		return nil, r.HandleErrorWithID("get", "user", username, err)
	}
	return user, nil
}

func (r *userRepository) GetOrCreate(ctx context.Context, username string) (*models.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	user = &models.User{Username: username, CreatedAt: now, UpdatedAt: now}
	_, err = r.GetDB().NewInsert().
		Model(user).
		On("CONFLICT (username) DO UPDATE").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(timeoutCtx)
	if err != nil {
		return nil, r.HandleError("get_or_create", "user", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var users []*models.User
	err := r.GetDB().NewSelect().
		Model(&users).
		Order("username ASC").
		Scan(timeoutCtx)
	if err != nil {
		return nil, r.HandleError("list", "user", err)
	}
	return users, nil
}
