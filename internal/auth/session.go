package auth

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionService logs users in with email and password and revokes their
// tokens on logout
type SessionService struct {
	db     *gorm.DB
	users  services.UserService
	issuer *TokenIssuer
}

func NewSessionService(db *gorm.DB, users services.UserService, issuer *TokenIssuer) *SessionService {
	return &SessionService{db: db, users: users, issuer: issuer}
}

// Login returns a signed token, or services.ErrInvalidCredentials when the
// email is unknown or the password does not match
func (s *SessionService) Login(ctx context.Context, email, password string) (IssuedToken, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return IssuedToken{}, services.ErrInvalidCredentials
		}
		return IssuedToken{}, err
	}
	if !user.CheckPassword(password) {
		log.WithField("user_id", user.ID).Warn("Login with wrong password")
		return IssuedToken{}, services.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return IssuedToken{}, err
	}

	log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"jti":     token.JTI,
	}).Info("User logged in")
	return token, nil
}

// Logout revokes the token identified by jti until it would have expired anyway
func (s *SessionService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("token has no jti claim")
	}

	revoked := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&revoked).Error
}

func (s *SessionService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// PurgeExpired forgets revocations of tokens that can no longer be used
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
