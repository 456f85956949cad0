package apitest

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-finance-client/users"
)

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	u, ok := s.users.Authenticate(r.PostFormValue("username"), r.PostFormValue("password"))
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if !u.IsActive {
		writeDetail(w, http.StatusBadRequest, "Inactive user")
		return
	}

	s.mu.Lock()
	accessToken, refreshToken := s.issueLocked(u.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg users.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if reg.Email == "" || reg.Username == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email and username are required")
		return
	}
	if err := users.ValidatePasswordStrength(reg.Password); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := s.users.Create(reg.Email, reg.Username, reg.Password, reg.FullName, users.RoleUser)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refresh[body.RefreshToken]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if u, err := s.users.GetByID(userID); err != nil || !u.IsActive {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, refreshToken := s.issueLocked(userID)
	resp := tokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}
	if s.rotateRefresh {
		delete(s.refresh, body.RefreshToken)
		resp.RefreshToken = refreshToken
	} else {
		delete(s.refresh, refreshToken)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body refreshBody
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	delete(s.refresh, body.RefreshToken)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByID(currentUserID(r))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.Profile)
}
