package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/dreitier/treefactor/config"
	"github.com/goji/httpauth"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const realm = "treefactor"

// WithBasicAuth protects next with HTTP basic auth if credentials are configured.
func WithBasicAuth(auth *config.BasicAuthConfiguration, next http.Handler) http.Handler {
	if auth == nil || auth.Username == "" {
		return next
	}

	if auth.PasswordHash == "" && auth.Password == "" {
		log.Warn("Basic auth has a username but no password; every request will be rejected")
	}

	return httpauth.BasicAuth(httpauth.AuthOptions{
		Realm:    realm,
		AuthFunc: credentialsChecker(auth),
	})(next)
}

func credentialsChecker(auth *config.BasicAuthConfiguration) func(string, string, *http.Request) bool {
	return func(user string, password string, _ *http.Request) bool {
		if subtle.ConstantTimeCompare([]byte(user), []byte(auth.Username)) != 1 {
			return false
		}

		if auth.PasswordHash != "" {
			return bcrypt.CompareHashAndPassword([]byte(auth.PasswordHash), []byte(password)) == nil
		}

		return auth.Password != "" && subtle.ConstantTimeCompare([]byte(password), []byte(auth.Password)) == 1
	}
}
