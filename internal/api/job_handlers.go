package api

import (
	"net/http"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
)

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.Facade.Jobs(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.Facade.Job(r.Context(), param(r, "jobName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) GetJobConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.Facade.JobConfig(r.Context(), param(r, "jobName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeText(w, "application/xml", config)
}

func (s *Server) CreateJob(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "jobName")
	config, err := readDocument(r, "jobConfig")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireParams(w, "jobName", name, "jobConfig", config) {
		return
	}
	if _, err := configxml.Parse(config); err != nil {
		writeFacadeError(w, err)
		return
	}
	if err := s.Facade.CreateJob(r.Context(), name, config); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) CopyJob(w http.ResponseWriter, r *http.Request) {
	source, name := formValue(r, "sourceJobName"), formValue(r, "newJobName")
	if !requireParams(w, "sourceJobName", source, "newJobName", name) {
		return
	}
	if err := s.Facade.CopyJob(r.Context(), source, name); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) RenameJob(w http.ResponseWriter, r *http.Request) {
	oldName, newName := formValue(r, "oldJobName"), formValue(r, "newJobName")
	if !requireParams(w, "oldJobName", oldName, "newJobName", newName) {
		return
	}
	if err := s.Facade.RenameJob(r.Context(), oldName, newName); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.DeleteJob(r.Context(), param(r, "jobName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BuildJob triggers a build. Form and query values become build parameters.
func (s *Server) BuildJob(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	params := map[string]string{}
	for k, v := range r.Form {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if err := s.Facade.BuildJob(r.Context(), param(r, "jobName"), params); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) StopBuild(w http.ResponseWriter, r *http.Request) {
	number, ok := intParam(r, "buildNumber")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid build number")
		return
	}
	if err := s.Facade.StopBuild(r.Context(), param(r, "jobName"), number); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) ListBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := s.Facade.Builds(r.Context(), param(r, "jobName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, builds)
}

func (s *Server) GetBuild(w http.ResponseWriter, r *http.Request) {
	number, ok := intParam(r, "buildNumber")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid build number")
		return
	}
	build, err := s.Facade.BuildInfo(r.Context(), param(r, "jobName"), number)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, build)
}

func (s *Server) GetConsoleOutput(w http.ResponseWriter, r *http.Request) {
	number, ok := intParam(r, "buildNumber")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid build number")
		return
	}
	out, err := s.Facade.ConsoleOutput(r.Context(), param(r, "jobName"), number)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeText(w, "text/plain; charset=utf-8", out)
}

// ListJobParameters answers name to default value, or the full definitions in
// declaration order with ?detail=true.
func (s *Server) ListJobParameters(w http.ResponseWriter, r *http.Request) {
	if formValue(r, "detail") == "true" {
		defs, err := s.Facade.JobParameterDefinitions(r.Context(), param(r, "jobName"))
		if err != nil {
			writeFacadeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, defs)
		return
	}
	params, err := s.Facade.JobParameters(r.Context(), param(r, "jobName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (s *Server) GetJobParameter(w http.ResponseWriter, r *http.Request) {
	p, err := s.Facade.JobParameter(r.Context(), param(r, "jobName"), param(r, "parameterName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) SetJobParameter(w http.ResponseWriter, r *http.Request) {
	value := r.FormValue("parameterValue")
	if _, present := r.Form["parameterValue"]; !present {
		writeError(w, http.StatusBadRequest, "parameterValue is required")
		return
	}
	res, err := s.Facade.SetJobParameter(r.Context(), param(r, "jobName"), param(r, "parameterName"), value)
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) CreateJobParameter(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "parameterName")
	if !requireParams(w, "parameterName", name) {
		return
	}
	job := param(r, "jobName")
	if err := s.Facade.CreateJobParameter(r.Context(), job, name, r.FormValue("defaultValue")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"job": job, "name": name})
}

func (s *Server) DeleteJobParameter(w http.ResponseWriter, r *http.Request) {
	found, err := s.Facade.DeleteJobParameter(r.Context(), param(r, "jobName"), param(r, "parameterName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"found": found})
}
