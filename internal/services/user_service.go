package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserProfile is a user as seen by a viewer
type UserProfile struct {
	User         models.User
	IsSubscribed bool
}

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	// EnsureUser returns the user with the given email, creating it with the
	// given role and a random password when missing.
	EnsureUser(ctx context.Context, email, role string) (*models.User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetProfile(ctx context.Context, viewerID, id uint) (UserProfile, error)
	ListUsers(ctx context.Context, viewerID uint, page Pagination) (Page[UserProfile], error)
	SetPassword(ctx context.Context, userID uint, req models.SetPasswordRequest) error
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	user := models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
		Password:  req.Password,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken models.User
		result := tx.Select("email", "username").
			Where("email = ? OR username = ?", user.Email, user.Username).
			Limit(1).
			Find(&taken)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			if taken.Email == user.Email {
				return newValidationError("email", "unique", "a user with this email already exists")
			}
			return newValidationError("username", "unique", "a user with this username already exists")
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")
	return &user, nil
}

func (s *userService) EnsureUser(ctx context.Context, email, role string) (*models.User, bool, error) {
	existing, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	username := strings.SplitN(email, "@", 2)[0]
	user := models.User{
		Email:     strings.ToLower(email),
		Username:  username,
		FirstName: username,
		LastName:  role,
		Role:      role,
		Password:  randomSecret(),
	}
	if err := user.HashPassword(); err != nil {
		return nil, false, err
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, ErrAlreadyExists
		}
		return nil, false, err
	}
	return &user, true, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetProfile(ctx context.Context, viewerID, id uint) (UserProfile, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return UserProfile{}, err
	}

	subscribed, err := subscribedAuthors(s.db.WithContext(ctx), viewerID, []uint{user.ID})
	if err != nil {
		return UserProfile{}, err
	}
	return UserProfile{User: *user, IsSubscribed: subscribed[user.ID]}, nil
}

func (s *userService) ListUsers(ctx context.Context, viewerID uint, page Pagination) (Page[UserProfile], error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return Page[UserProfile]{}, err
	}

	var users []models.User
	if err := db.Scopes(page.scope).Order("id").Find(&users).Error; err != nil {
		return Page[UserProfile]{}, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	subscribed, err := subscribedAuthors(db, viewerID, ids)
	if err != nil {
		return Page[UserProfile]{}, err
	}

	items := make([]UserProfile, len(users))
	for i, u := range users {
		items[i] = UserProfile{User: u, IsSubscribed: subscribed[u.ID]}
	}
	return Page[UserProfile]{Items: items, Count: count, Pagination: page}, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, req models.SetPasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return newValidationError("current_password", "password", "current password is incorrect")
	}

	user.Password = req.NewPassword
	if err := user.HashPassword(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Password changed")
	return nil
}
