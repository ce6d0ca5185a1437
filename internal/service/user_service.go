package service

import (
	"context"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/models"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = 0
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		current, err := repo.GetUserByID(ctx, id)
		if err != nil {
			return notFound(err, "User with id %d not found", id)
		}
		patch.Apply(current)
		if err := repo.UpdateUser(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User with id %d not found", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "User with id %d not found", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
