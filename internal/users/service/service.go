package users

import (
	"context"
	"errors"
	"fmt"

	"ms-users/internal/logger"
	"ms-users/internal/models"
)

type UserDBLayer interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, name, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserCache.Get returns models.ErrUserNotFound for ids marked deleted.
// Fill must not overwrite an existing entry; Set always does.
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.User, bool, error)
	Set(ctx context.Context, user *models.User) error
	Fill(ctx context.Context, user *models.User) error
	MarkDeleted(ctx context.Context, id int64) error
}

type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event models.UserEvent) error
}

// UserService adds validation, caching and change events around the store.
// Cache and Events are optional; failures in either are logged, never returned.
type UserService struct {
	DB     UserDBLayer
	Cache  UserCache
	Events EventPublisher
	Logger *logger.Logger
}

func NewUserService(db UserDBLayer, cache UserCache, events EventPublisher, log *logger.Logger) *UserService {
	return &UserService{
		DB:     db,
		Cache:  cache,
		Events: events,
		Logger: log,
	}
}

func Validate(input models.UserInput) error {
	if input.Name == "" || input.Email == "" {
		return &models.ValidationError{Message: "Name and email are required"}
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.DB.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if s.Cache != nil {
		user, ok, err := s.Cache.Get(ctx, id)
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		if err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("Cache read for user %d failed: %v", id, err))
		} else if ok {
			return user, nil
		}
	}

	user, err := s.DB.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, user)
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, input models.UserInput) (*models.User, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	user, err := s.DB.CreateUser(ctx, input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	s.Logger.LogUser("CREATE", user.ID, "user created")

	s.cacheUser(ctx, user)
	s.publish(ctx, models.NewUserEvent(models.UserCreated, user.ID, user))
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, input models.UserInput) (*models.User, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	user, err := s.DB.UpdateUser(ctx, id, input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	s.Logger.LogUser("UPDATE", user.ID, "user updated")

	s.cacheUser(ctx, user)
	s.publish(ctx, models.NewUserEvent(models.UserUpdated, user.ID, user))
	return user, nil
}

// DeleteUser succeeds whether or not the user existed.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.DB.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.Logger.LogUser("DELETE", id, "user deleted")

	s.markDeleted(ctx, id)
	s.publish(ctx, models.NewUserEvent(models.UserDeleted, id, nil))
	return nil
}

func (s *UserService) cacheUser(ctx context.Context, user *models.User) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, user); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("Cache write for user %d failed: %v", user.ID, err))
	}
}

func (s *UserService) fillCache(ctx context.Context, user *models.User) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Fill(ctx, user); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("Cache fill for user %d failed: %v", user.ID, err))
	}
}

func (s *UserService) markDeleted(ctx context.Context, id int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.MarkDeleted(ctx, id); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("Cache delete marker for user %d failed: %v", id, err))
	}
}

func (s *UserService) publish(ctx context.Context, event models.UserEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishUserEvent(ctx, event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for user %d: %v", event.Type, event.UserID, err))
		return
	}
	s.Logger.Debug("KAFKA", fmt.Sprintf("Published %s for user %d", event.Type, event.UserID))
}
