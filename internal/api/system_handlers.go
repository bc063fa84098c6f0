package api

import (
	"net/http"
)

func (s *Server) ServerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Facade.ServerInfo(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Facade.Statistics(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) GetGlobalConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.Facade.GlobalConfig(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeText(w, "application/xml", config)
}

func (s *Server) UpdateGlobalConfig(w http.ResponseWriter, r *http.Request) {
	config, err := readDocument(r, "configXml")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireParams(w, "configXml", config) {
		return
	}
	if err := s.Facade.UpdateGlobalConfig(r.Context(), config); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}
