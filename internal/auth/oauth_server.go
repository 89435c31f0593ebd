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

// OAuthService issues client-credentials tokens for machine clients
// (kitchen displays, integrations) and login tokens for staff.
type OAuthService struct {
	server    *server.Server
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewOAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}

	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), SigningMethod, db))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(false)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetInternalErrorHandler(func(err error) *errors.Response {
		log.WithError(err).Error("OAuth internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *errors.Response) {
		log.WithFields(logrus.Fields{
			"error":  re.Error,
			"status": re.StatusCode,
		}).Warn("OAuth token request rejected")
	})

	return &OAuthService{
		server:    srv,
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// TokenTTL is the lifetime of issued access tokens.
func (o *OAuthService) TokenTTL() time.Duration {
	return o.tokenTTL
}
