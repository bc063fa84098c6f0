package api

import (
	"net/http"
)

func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Facade.Groups(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.Facade.Group(r.Context(), param(r, "groupName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "newGroupName")
	if !requireParams(w, "newGroupName", name) {
		return
	}
	if err := s.Facade.CreateGroup(r.Context(), name); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (s *Server) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "groupName")
	if !requireParams(w, "groupName", name) {
		return
	}
	if err := s.Facade.DeleteGroup(r.Context(), name); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) AddUserToGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.AddUserToGroup(r.Context(), param(r, "userName"), param(r, "groupName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) RemoveUserFromGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.Facade.RemoveUserFromGroup(r.Context(), param(r, "userName"), param(r, "groupName")); err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) ListGroupPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := s.Facade.GroupPermissions(r.Context(), param(r, "groupName"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

func (s *Server) AddGroupPermission(w http.ResponseWriter, r *http.Request) {
	permission := formValue(r, "permissionId")
	if !requireParams(w, "permissionId", permission) {
		return
	}
	err := s.Facade.AddGroupPermission(r.Context(), param(r, "groupName"), permission, formValue(r, "impliedBy"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) RemoveGroupPermission(w http.ResponseWriter, r *http.Request) {
	permission := formValue(r, "permissionId")
	if !requireParams(w, "permissionId", permission) {
		return
	}
	err := s.Facade.RemoveGroupPermission(r.Context(), param(r, "groupName"), permission, formValue(r, "impliedBy"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Facade.Users(r.Context())
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Facade.User(r.Context(), param(r, "userId"))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
