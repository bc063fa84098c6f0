package api

import (
	"net/http"
)

func (s *Server) ListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.Facade.Views(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	view, err := s.Facade.View(r.Context(), param(r, "viewName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) CreateView(w http.ResponseWriter, r *http.Request) {
	name, viewType := formValue(r, "viewName"), formValue(r, "viewType")
	if !requireParams(w, "viewName", name, "viewType", viewType) {
		return
	}
	if err := s.Facade.CreateView(r.Context(), name, viewType, formList(r, "jobNames")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// GetViewJobs lists the job names the view's config declares.
func (s *Server) GetViewJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.Facade.ViewJobs(r.Context(), param(r, "viewName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []string{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// UpdateView replaces the view config with viewXml when given, otherwise
// regenerates it from viewType and newJobNames.
func (s *Server) UpdateView(w http.ResponseWriter, r *http.Request) {
	name := param(r, "viewName")
	config, err := readDocument(r, "viewXml")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if config != "" {
		err = s.Facade.UpdateView(r.Context(), name, config)
	} else {
		viewType := formValue(r, "viewType")
		if viewType == "" {
			viewType = "listview"
		}
		err = s.Facade.UpdateViewJobs(r.Context(), name, viewType, formList(r, "newJobNames"))
	}
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) DeleteView(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.DeleteView(r.Context(), param(r, "viewName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
