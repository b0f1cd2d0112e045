package web

import (
	"net/http"
	"net/url"

	"github.com/dreitier/treefactor/editor"
	"github.com/dreitier/treefactor/metrics"
	"github.com/gorilla/mux"
)

const sessionRoute = "/api/sessions/{id}"

// NewRouter exposes the sessions of manager. Uploaded listings are limited to maxUploadSize bytes.
func NewRouter(manager *editor.Manager, maxUploadSize int64) *mux.Router {
	api := &Api{manager: manager, maxUploadSize: maxUploadSize}

	router := mux.NewRouter().UseEncodedPath()
	router.StrictSlash(true)
	router.HandleFunc("/", BaseHandler)
	router.Handle("/metrics", metrics.Handler())

	router.HandleFunc("/api", api.ListSessions).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions", api.CreateSession).Methods(http.MethodPost)
	router.HandleFunc(sessionRoute, api.GetSession).Methods(http.MethodGet)
	router.HandleFunc(sessionRoute, api.DeleteSession).Methods(http.MethodDelete)
	router.HandleFunc(sessionRoute+"/initial", api.GetInitialTree).Methods(http.MethodGet)
	router.HandleFunc(sessionRoute+"/report", api.GetReport).Methods(http.MethodGet)
	router.HandleFunc(sessionRoute+"/node", api.GetNode).Methods(http.MethodGet)
	router.HandleFunc(sessionRoute+"/contains", api.Contains).Methods(http.MethodGet)
	router.HandleFunc(sessionRoute+"/move", api.Move).Methods(http.MethodPost)
	router.HandleFunc(sessionRoute+"/reset", api.Reset).Methods(http.MethodPost)

	return router
}

// Base route to access the API.
func BaseHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api", http.StatusMovedPermanently)
}

func sessionId(r *http.Request) string {
	vars := mux.Vars(r)
	unescape(vars)
	return vars["id"]
}

func unescape(vars map[string]string) {
	for key, val := range vars {
		val, err := url.PathUnescape(val)
		if err == nil {
			vars[key] = val
		}
	}
}
