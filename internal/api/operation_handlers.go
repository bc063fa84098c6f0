package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

func (s *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.Operations.List()
	out := make([]*models.Operation, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	op := s.Operations.Get(id)
	if op == nil {
		writeError(w, http.StatusNotFound, "operation not found")
		return
	}
	writeJSON(w, http.StatusOK, op.Snapshot())
}

// runAsync starts fn in the background as a journaled operation and answers
// 202 with its id. Progress is streamed from /ws/operations/{id}/logs.
func (s *Server) runAsync(w http.ResponseWriter, opType, target string, fn func(ctx context.Context, op *models.Operation) (interface{}, error)) {
	op := s.Operations.Create(opType, target)
	log := s.Log.WithFields(logrus.Fields{"operation": op.ID, "type": opType, "target": target})

	go func() {
		result, err := fn(context.Background(), op)
		if err != nil {
			op.AppendLog("ERROR: " + err.Error())
			op.Fail(err, result)
			log.WithError(err).Warn("Operation failed")
			return
		}
		op.Complete(result)
		log.Info("Operation completed")
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"operation_id": op.ID})
}

func (s *Server) Restart(w http.ResponseWriter, r *http.Request) {
	safe := formValue(r, "safe") == "true"
	target := "immediate"
	if safe {
		target = "safe"
	}
	s.runAsync(w, "restart", target, func(ctx context.Context, op *models.Operation) (interface{}, error) {
		op.AppendLog(fmt.Sprintf("Requesting %s restart of %s", target, s.Connection.BaseURL()))
		if err := s.Facade.Restart(ctx, safe); err != nil {
			return nil, err
		}
		op.AppendLog("Restart scheduled")
		return nil, nil
	})
}

func (s *Server) InstallPlugin(w http.ResponseWriter, r *http.Request) {
	if pluginURL := formValue(r, "pluginUrl"); pluginURL != "" {
		s.runAsync(w, "plugin-install", pluginURL, func(ctx context.Context, op *models.Operation) (interface{}, error) {
			op.AppendLog("Installing plugin from " + pluginURL)
			if err := s.Facade.InstallPluginFromURL(ctx, pluginURL); err != nil {
				return nil, err
			}
			op.AppendLog("Install request accepted, download continues on the controller")
			return nil, nil
		})
		return
	}

	id, version := formValue(r, "pluginId"), formValue(r, "version")
	if !requireParams(w, "pluginId", id) {
		return
	}
	s.runAsync(w, "plugin-install", id, func(ctx context.Context, op *models.Operation) (interface{}, error) {
		op.AppendLog(fmt.Sprintf("Installing plugin %s (version %q)", id, version))
		if err := s.Facade.InstallPlugin(ctx, id, version); err != nil {
			return nil, err
		}
		op.AppendLog("Install request accepted, download continues on the controller")
		return nil, nil
	})
}

// MoveJob runs synchronously but is journaled, one log line per phase, so a
// half-finished move can be inspected afterwards.
func (s *Server) MoveJob(w http.ResponseWriter, r *http.Request) {
	job, folder := formValue(r, "jobName"), formValue(r, "newFolder")
	if !requireParams(w, "jobName", job, "newFolder", folder) {
		return
	}
	op := s.Operations.Create("job-move", job)
	op.AppendLog(fmt.Sprintf("Moving %s into %s", job, folder))

	res, err := s.Facade.MoveJob(r.Context(), job, folder)
	if res.Created {
		op.AppendLog("Created " + res.Target)
	}
	if res.Deleted {
		op.AppendLog("Deleted " + res.Source)
	}
	if err != nil {
		op.AppendLog("ERROR: " + err.Error())
		op.Fail(err, res)
		writeJSON(w, statusFor(err), map[string]interface{}{
			"error":        err.Error(),
			"operation_id": op.ID,
			"result":       res,
		})
		return
	}
	op.Complete(res)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"operation_id": op.ID,
		"result":       res,
	})
}
