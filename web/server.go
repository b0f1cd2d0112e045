package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dreitier/treefactor/config"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
	tls        *config.TlsConfiguration
}

// NewServer serves handler on the configured port, with TLS if a certificate is configured.
func NewServer(global *config.GlobalConfiguration, httpConfig *config.HttpConfiguration, handler http.Handler) *Server {
	var tlsServerConfig *tls.Config
	var tlsNextProto map[string]func(*http.Server, *tls.Conn, http.Handler)

	if httpConfig.Tls != nil {
		// `strict: true` restricts TLS to what SSLLabs prefers
		if httpConfig.Tls.IsStrict {
			tlsServerConfig = &tls.Config{
				MinVersion:       tls.VersionTLS12,
				CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
				CipherSuites: []uint16{
					tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
					tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
					tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
					tls.TLS_RSA_WITH_AES_256_CBC_SHA,
				},
			}
		}

		// an empty map disables HTTP/2
		tlsNextProto = make(map[string]func(*http.Server, *tls.Conn, http.Handler))
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			Addr:              fmt.Sprintf(":%d", global.HttpPort()),
			TLSConfig:         tlsServerConfig,
			TLSNextProto:      tlsNextProto,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tls: httpConfig.Tls,
	}
}

// ListenAndServe blocks until the server fails or is shut down. A shutdown is not an error.
func (s *Server) ListenAndServe() error {
	var err error

	if s.tls != nil {
		log.Infof("Starting webserver on %s with TLS", s.httpServer.Addr)
		err = s.httpServer.ListenAndServeTLS(s.tls.CertificatePath, s.tls.PrivateKeyPath)
	} else {
		log.Infof("Starting webserver on %s", s.httpServer.Addr)
		err = s.httpServer.ListenAndServe()
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Stopping webserver")
	return s.httpServer.Shutdown(ctx)
}
