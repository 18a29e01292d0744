package web

import (
	"net/http"
)

type unlockRequest struct {
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// handleSignIn hands out a staff session to anyone; it only makes writes
// attributable to a token.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Admin.SignIn()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.svc.Admin.Unlock(r.Context(), req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Admin.ChangePassword(r.Context(), req.Old, req.New); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
