package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jenkinsapi/jenkins-workbench/internal/jenkins"
	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Server holds shared state for all API handlers.
type Server struct {
	Facade     *jenkins.Facade
	Connection *models.Connection
	Operations *models.OperationStore
	Log        *logrus.Entry
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	if s.Log == nil {
		s.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/connection", s.GetConnection)
		r.Post("/connection/test", s.TestConnection)

		// Operation journal
		r.Get("/operations", s.ListOperations)
		r.Get("/operations/{id}", s.GetOperation)

		r.Route("/jenkins", func(r chi.Router) {
			// Server
			r.Get("/info", s.ServerInfo)
			r.Get("/statistics", s.Statistics)
			r.Get("/config", s.GetGlobalConfig)
			r.Put("/config", s.UpdateGlobalConfig)
			r.Post("/restart", s.Restart)

			// Jobs and builds
			r.Get("/jobs", s.ListJobs)
			r.Post("/job/create", s.CreateJob)
			r.Post("/job/copy", s.CopyJob)
			r.Post("/job/move", s.MoveJob)
			r.Post("/job/rename", s.RenameJob)
			r.Get("/job/{jobName}/info", s.GetJob)
			r.Get("/job/{jobName}/config", s.GetJobConfig)
			r.Delete("/job/{jobName}", s.DeleteJob)
			r.Post("/job/{jobName}/build", s.BuildJob)
			r.Post("/job/{jobName}/stop/{buildNumber}", s.StopBuild)
			r.Get("/job/{jobName}/builds", s.ListBuilds)
			r.Get("/job/{jobName}/build/{buildNumber}/info", s.GetBuild)
			r.Get("/job/{jobName}/build/{buildNumber}/console", s.GetConsoleOutput)

			// Job parameters
			r.Get("/job/{jobName}/parameters", s.ListJobParameters)
			r.Post("/job/{jobName}/parameter", s.CreateJobParameter)
			r.Get("/job/{jobName}/parameter/{parameterName}", s.GetJobParameter)
			r.Put("/job/{jobName}/parameter/{parameterName}", s.SetJobParameter)
			r.Delete("/job/{jobName}/parameter/{parameterName}", s.DeleteJobParameter)

			// Views
			r.Get("/views", s.ListViews)
			r.Post("/view/create", s.CreateView)
			r.Get("/view/{viewName}", s.GetView)
			r.Get("/view/{viewName}/jobs", s.GetViewJobs)
			r.Put("/view/{viewName}/update", s.UpdateView)
			r.Delete("/view/{viewName}/delete", s.DeleteView)

			// Plugins
			r.Get("/plugins/available", s.ListAvailablePlugins)
			r.Get("/plugins/installed", s.ListInstalledPlugins)
			r.Post("/plugin/install", s.InstallPlugin)
			r.Get("/plugin/{pluginId}/info", s.GetPlugin)
			r.Post("/plugin/{pluginId}/enable", s.EnablePlugin)
			r.Post("/plugin/disable/{pluginId}", s.DisablePlugin)

			// Groups, permissions and users
			r.Get("/groups", s.ListGroups)
			r.Post("/group/create", s.CreateGroup)
			r.Post("/group/delete", s.DeleteGroup)
			r.Get("/group/{groupName}", s.GetGroup)
			r.Get("/group/{groupName}/permissions", s.ListGroupPermissions)
			r.Post("/groups/{groupName}/permissions/add", s.AddGroupPermission)
			r.Post("/groups/{groupName}/permissions/remove", s.RemoveGroupPermission)
			r.Post("/user/{userName}/addToGroup/{groupName}", s.AddUserToGroup)
			r.Post("/user/{userName}/removeFromGroup/{groupName}", s.RemoveUserFromGroup)
			r.Get("/users", s.ListUsers)
			r.Get("/users/{userId}", s.GetUser)

			// Nodes
			r.Get("/nodes", s.ListNodes)
			r.Post("/nodes", s.CreateNode)
			r.Get("/nodes/{nodeName}", s.GetNode)
			r.Get("/nodes/{nodeName}/config", s.GetNodeConfig)
			r.Put("/nodes/{nodeName}/config", s.UpdateNodeConfig)
			r.Post("/node/{nodeName}/delete", s.DeleteNode)
			r.Post("/node/{nodeName}/enable", s.EnableNode)
			r.Post("/node/{nodeName}/disable", s.DisableNode)
		})
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/operations/{id}/logs", s.StreamOperationLogs)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
