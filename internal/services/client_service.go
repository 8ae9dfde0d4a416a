package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientCredentialsGrant is the only grant type API clients are issued
const ClientCredentialsGrant = "client_credentials"

type ClientInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	Domain string `json:"domain" validate:"omitempty,url"`
	Scopes string `json:"scopes"`
}

type ClientService interface {
	// CreateClient registers an API client for userID and returns the plain
	// secret, which is not recoverable afterwards.
	CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error) {
	if err := validate(input); err != nil {
		return nil, "", err
	}

	secret := randomSecret()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	scopes := strings.TrimSpace(input.Scopes)
	if scopes == "" {
		scopes = "read write"
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashed),
		Name:       input.Name,
		Domain:     input.Domain,
		UserID:     userID,
		Scopes:     scopes,
		GrantTypes: ClientCredentialsGrant,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", err
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   userID,
	}).Info("OAuth client created")
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func randomSecret() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
