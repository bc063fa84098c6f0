package api

import (
	"net/http"
)

func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.Facade.Nodes(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.Facade.Node(r.Context(), param(r, "nodeName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) GetNodeConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.Facade.NodeConfig(r.Context(), param(r, "nodeName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeText(w, "application/xml", config)
}

// CreateNode takes the node name as a query parameter and the agent
// config.xml as the request body.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("nodeName")
	config, err := readDocument(r, "nodeConfig")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if name == "" {
		name = r.FormValue("nodeName")
	}
	if !requireParams(w, "nodeName", name, "nodeConfig", config) {
		return
	}
	if err := s.Facade.CreateNode(r.Context(), name, config); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) UpdateNodeConfig(w http.ResponseWriter, r *http.Request) {
	config, err := readDocument(r, "nodeConfig")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireParams(w, "nodeConfig", config) {
		return
	}
	if err := s.Facade.UpdateNodeConfig(r.Context(), param(r, "nodeName"), config); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.DeleteNode(r.Context(), param(r, "nodeName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) EnableNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.EnableNode(r.Context(), param(r, "nodeName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) DisableNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.DisableNode(r.Context(), param(r, "nodeName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}
