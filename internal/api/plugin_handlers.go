package api

import (
	"net/http"
)

func (s *Server) ListAvailablePlugins(w http.ResponseWriter, r *http.Request) {
	plugins, err := s.Facade.AvailablePlugins(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

func (s *Server) ListInstalledPlugins(w http.ResponseWriter, r *http.Request) {
	plugins, err := s.Facade.InstalledPlugins(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

func (s *Server) GetPlugin(w http.ResponseWriter, r *http.Request) {
	plugin, err := s.Facade.Plugin(r.Context(), param(r, "pluginId"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plugin)
}

func (s *Server) EnablePlugin(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.EnablePlugin(r.Context(), param(r, "pluginId")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) DisablePlugin(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.DisablePlugin(r.Context(), param(r, "pluginId")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}
