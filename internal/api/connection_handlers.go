package api

import (
	"net/http"
)

// GetConnection describes the managed controller without its credentials.
func (s *Server) GetConnection(w http.ResponseWriter, r *http.Request) {
	c := s.Connection
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     c.Name,
		"url":      c.BaseURL(),
		"username": c.Username,
		"token":    c.MaskedToken(),
		"insecure": c.Insecure,
		"timeout":  c.Timeout.String(),
	})
}

// TestConnection pings the controller and reports its version.
func (s *Server) TestConnection(w http.ResponseWriter, r *http.Request) {
	version, err := s.Facade.Version(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"version": version,
	})
}
