package auth

import (
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// OAuthService issues client credentials tokens to API clients registered by users
type OAuthService struct {
	server *server.Server
	tokens *GormTokenStore
	db     *gorm.DB
}

func NewOAuthService(db *gorm.DB, jwtSecret string, accessTTL time.Duration) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{
		AccessTokenExp:    accessTTL,
		IsGenerateRefresh: false,
	})

	// Access tokens carry the same uid/role claims as login tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), SigningMethod, db))

	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetInternalErrorHandler(func(err error) *errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *errors.Response) {
		log.WithFields(logrus.Fields{
			"error":       re.Error,
			"status_code": re.StatusCode,
		}).Warn("OAuth2 token request rejected")
	})

	return &OAuthService{
		server: srv,
		tokens: tokenStore,
		db:     db,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

func (o *OAuthService) TokenStore() *GormTokenStore {
	return o.tokens
}
