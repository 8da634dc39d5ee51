package http

import (
	"fmt"
	"net/http"
	"time"

	"spesa/internal/auth"
	"spesa/internal/core"
	applog "spesa/internal/log"
	"spesa/internal/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	State     services.SessionState `json:"state"`
	User      string                `json:"user,omitempty"`
	Token     string                `json:"token,omitempty"`
	ExpiresAt *time.Time            `json:"expiresAt,omitempty"`
	Lists     int                   `json:"lists"`
	Items     int                   `json:"items"`
	SaveError string                `json:"saveError,omitempty"`
}

func (s *Server) sessionInfo() sessionResponse {
	l := s.ledger.Ledger()
	resp := sessionResponse{
		State: s.ledger.State(),
		Lists: len(l.Lists),
		Items: l.ItemCount(),
	}
	if err := s.ledger.LastSaveError(); err != nil {
		resp.SaveError = err.Error()
	}
	return resp
}

// handleLogin checks the credential when auth is enabled and starts the
// session. A session that is already live is kept as is.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if s.auth != nil {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	var (
		token   string
		expires time.Time
	)
	if s.auth != nil {
		var err error
		token, expires, err = s.auth.Login(req.Username, req.Password)
		if err != nil {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
				WarnContext(r.Context(), "Login failed", applog.FieldClientIP, s.detector.ExtractClientIP(r))
			writeError(w, r, err)
			return
		}
	}

	if s.ledger.State() != services.StateReady {
		if err := s.ledger.Hydrate(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}

	resp := s.sessionInfo()
	resp.User = req.Username
	if token != "" {
		resp.Token = token
		resp.ExpiresAt = &expires
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogout flushes and clears the session. A failed final save is
// reported but the session is cleared regardless.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.Logout(r.Context())
	resp := s.sessionInfo()
	if err != nil {
		resp.SaveError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := s.sessionInfo()
	if claims, ok := auth.FromContext(r.Context()); ok {
		resp.User = claims.Subject
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExport streams the backup document as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportLedger(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="spesa-backup-%s.json"`, core.DayKey(s.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type importResponse struct {
	Lists int `json:"lists"`
	Items int `json:"items"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, maxImportBody)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.ImportLedger(r.Context(), data); err != nil {
		writeError(w, r, err)
		return
	}
	l := s.ledger.Ledger()
	writeJSON(w, http.StatusOK, importResponse{Lists: len(l.Lists), Items: l.ItemCount()})
}
