package service

import (
	"errors"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserProfile is a public view of a user with activity counters.
type UserProfile struct {
	User            *model.User `json:"user"`
	CollectionCount int64       `json:"collection_count"`
	BattleCount     int64       `json:"battle_count"`
}

type UserService interface {
	GetProfile(userID uint) (*UserProfile, error)
	UpdateProfile(userID uint, username, bio, avatarURL string) (*model.User, error)
}

type userService struct {
	userRepo       repository.UserRepository
	collectionRepo repository.CollectionRepository
	battleRepo     repository.BattleRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	collectionRepo repository.CollectionRepository,
	battleRepo repository.BattleRepository,
) UserService {
	return &userService{
		userRepo:       userRepo,
		collectionRepo: collectionRepo,
		battleRepo:     battleRepo,
	}
}

func (s *userService) GetProfile(userID uint) (*UserProfile, error) {
	logger.Debug("Fetching user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found for profile", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user for profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	collectionCount, err := s.collectionRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	battleCount, err := s.battleRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		User:            user,
		CollectionCount: collectionCount,
		BattleCount:     battleCount,
	}, nil
}

func (s *userService) UpdateProfile(userID uint, username, bio, avatarURL string) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found for profile update", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user for profile update", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if username != "" && username != user.Username {
		existing, err := s.userRepo.FindByUsername(username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			logger.Warn("Profile update failed: username already exists", map[string]interface{}{
				"user_id":  userID,
				"username": username,
			})
			return nil, ErrUsernameAlreadyExists
		}
		user.Username = username
	}
	if bio != "" {
		user.Bio = bio
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User profile updated successfully", map[string]interface{}{
		"user_id": userID,
	})

	return user, nil
}
