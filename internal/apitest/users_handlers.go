package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-finance-client/users"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit == 0 {
		limit = 100
	}
	writeJSON(w, http.StatusOK, s.users.List(skip, limit))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.users.GetByID(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in users.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if in.Email == nil || in.Username == nil || in.Password == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "email, username and password are required")
		return
	}
	if err := users.ValidatePasswordStrength(*in.Password); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	role := users.RoleUser
	if in.Role != nil {
		role = *in.Role
	}
	u, err := s.users.Create(*in.Email, *in.Username, *in.Password, in.FullName, role)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.IsActive != nil && !*in.IsActive {
		u, _ = s.users.Update(u.ID, users.Input{IsActive: in.IsActive})
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in users.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if in.Password != nil {
		if err := users.ValidatePasswordStrength(*in.Password); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	u, err := s.users.Update(id, in)
	if errors.Is(err, errUserNotFound) {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if id == currentUserID(r) {
		writeDetail(w, http.StatusBadRequest, "Cannot delete yourself")
		return
	}
	if err := s.users.Delete(id); err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
