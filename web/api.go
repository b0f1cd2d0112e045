package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dreitier/treefactor/editor"
	"github.com/dreitier/treefactor/tree"
	log "github.com/sirupsen/logrus"
)

const (
	contentTypeJson = "application/json; charset=utf-8"
	maxMoveRequest  = 64 * 1024
)

type Api struct {
	manager       *editor.Manager
	maxUploadSize int64
}

type createdResponse struct {
	Id     string      `json:"id"`
	Report tree.Report `json:"report"`
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type moveResponse struct {
	Path   string         `json:"path,omitempty"`
	Reason tree.Rejection `json:"reason,omitempty"`
}

type containsResponse struct {
	Query    string `json:"query"`
	Contains bool   `json:"contains"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *Api) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, a.manager.List())
}

func (a *Api) CreateSession(w http.ResponseWriter, r *http.Request) {
	listing, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxUploadSize))
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := a.manager.Create(r.Context(), listing)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+session.Id())
	writeData(w, http.StatusCreated, createdResponse{Id: session.Id(), Report: session.Report()})
}

func (a *Api) GetSession(w http.ResponseWriter, r *http.Request) {
	if session := a.openSession(w, r); session != nil {
		writeListing(w, session.Serialize())
	}
}

func (a *Api) GetInitialTree(w http.ResponseWriter, r *http.Request) {
	if session := a.openSession(w, r); session != nil {
		writeListing(w, session.SerializeInitial())
	}
}

func (a *Api) GetReport(w http.ResponseWriter, r *http.Request) {
	if session := a.openSession(w, r); session != nil {
		writeData(w, http.StatusOK, session.Report())
	}
}

func (a *Api) GetNode(w http.ResponseWriter, r *http.Request) {
	session := a.openSession(w, r)
	if session == nil {
		return
	}

	path := r.URL.Query().Get("path")
	info, found := session.FindNode(path)
	if !found {
		nodeNotFound(w, path)
		return
	}

	writeData(w, http.StatusOK, info)
}

func (a *Api) Contains(w http.ResponseWriter, r *http.Request) {
	session := a.openSession(w, r)
	if session == nil {
		return
	}

	query := r.URL.Query().Get("q")
	writeData(w, http.StatusOK, containsResponse{Query: query, Contains: session.Contains(query)})
}

func (a *Api) Move(w http.ResponseWriter, r *http.Request) {
	session := a.openSession(w, r)
	if session == nil {
		return
	}

	var request moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMoveRequest)).Decode(&request); err != nil {
		writeData(w, http.StatusBadRequest, errorResponse{Error: "invalid move request: " + err.Error()})
		return
	}

	newPath, rejection, err := a.manager.Move(session.Id(), request.From, request.To)
	if err != nil {
		writeError(w, err)
		return
	}

	if rejection != tree.Accepted {
		writeData(w, http.StatusConflict, moveResponse{Reason: rejection})
		return
	}

	writeData(w, http.StatusOK, moveResponse{Path: newPath})
}

func (a *Api) Reset(w http.ResponseWriter, r *http.Request) {
	session := a.openSession(w, r)
	if session == nil {
		return
	}

	if err := a.manager.Reset(r.Context(), session.Id()); err != nil {
		writeError(w, err)
		return
	}

	writeListing(w, session.Serialize())
}

func (a *Api) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Delete(r.Context(), sessionId(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) openSession(w http.ResponseWriter, r *http.Request) *editor.Session {
	session, err := a.manager.Open(r.Context(), sessionId(r))
	if err != nil {
		writeError(w, err)
		return nil
	}
	return session
}

func writeListing(w http.ResponseWriter, listing []byte) {
	w.Header().Set("Content-Type", contentTypeJson)
	if _, err := w.Write(listing); err != nil {
		log.Debugf("Failed to write listing: %s", err)
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", contentTypeJson)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// writeError maps err to a status code.
func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, tree.ErrMalformed):
		status = http.StatusBadRequest
	case errors.Is(err, editor.ErrUnknownSession):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Errorf("Request failed: %s", err)
	}

	writeData(w, status, errorResponse{Error: err.Error()})
}

func nodeNotFound(w http.ResponseWriter, path string) {
	writeData(w, http.StatusNotFound, errorResponse{Error: "node '" + path + "' does not exist"})
}
