package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserService interface {
	// CreateUser normalizes the role and hashes user.Password before insert.
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	ListUsers() ([]models.User, error)
	CountUsers() (int64, error)
	// DeleteUser removes target on behalf of actor, keeping audit rows with a null author.
	DeleteUser(actorID, targetID uint) error
	// EnsureManager creates the given manager account if no user has that username.
	EnsureManager(username, password string) (bool, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(user *models.User) error {
	role, ok := models.NormalizeRole(user.Role)
	if !ok {
		return ErrInvalidRole
	}
	user.Role = role
	user.Username = strings.TrimSpace(user.Username)

	var existing models.User
	if err := s.db.Where("username = ?", user.Username).First(&existing).Error; err == nil {
		return ErrUserExists
	}

	if user.Password != "" {
		if err := user.HashPassword(); err != nil {
			return err
		}
	}
	return s.db.Create(user).Error
}

func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *userService) DeleteUser(actorID, targetID uint) error {
	if actorID == targetID {
		return ErrCannotDeleteSelf
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if target.Role == models.RoleManager {
			var managers int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleManager).Count(&managers).Error; err != nil {
				return err
			}
			if managers <= 1 {
				return ErrLastManager
			}
		}

		if err := tx.Model(&models.OrderHistory{}).
			Where("changed_by = ?", targetID).
			Update("changed_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).
			Where("created_by = ?", targetID).
			Update("created_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.OAuthClient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"actor_id": actorID, "user_id": targetID}).Info("User deleted")
	return nil
}

func (s *userService) EnsureManager(username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	if _, err := s.GetUserByUsername(username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	user := &models.User{
		Username: username,
		Name:     username,
		Password: password,
		Role:     models.RoleManager,
	}
	if err := s.CreateUser(user); err != nil {
		return false, err
	}
	log.WithField("username", username).Info("Bootstrap manager created")
	return true, nil
}
