package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akranjan/facemark/internal/session"
)

// AuthHandler exposes the role sign-in and sign-out endpoints.
type AuthHandler struct {
	sessions *session.Manager
}

func NewAuthHandler(sessions *session.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role,omitempty"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Login signs in as one of the mock roles. The professor path checks the
// configured credential pair; the student path is unconditional.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	switch session.ParseRole(req.Role) {
	case session.RoleProfessor:
		s, err := h.sessions.SignInAsProfessor(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) {
				respondJSON(w, http.StatusUnauthorized, LoginResponse{
					Success: false,
					Error:   "invalid credentials",
				})
				return
			}
			respondError(w, http.StatusInternalServerError, "sign-in failed")
			return
		}
		respondJSON(w, http.StatusOK, LoginResponse{Success: true, Role: s.Role.String(), Email: s.Email})
	case session.RoleStudent:
		s := h.sessions.SignInAsStudent()
		respondJSON(w, http.StatusOK, LoginResponse{Success: true, Role: s.Role.String(), Email: s.Email})
	default:
		respondError(w, http.StatusBadRequest, "role must be professor or student")
	}
}

// Logout clears the session. It always answers success; the local session is
// gone even when a remote sign-out fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse represents the auth status response.
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	State         string `json:"state"`
	Role          string `json:"role,omitempty"`
}

// Status reports the session state and role.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, current := h.sessions.Current()
	resp := StatusResponse{
		Authenticated: state == session.StateAuthenticated,
		State:         state.String(),
	}
	if current != nil {
		resp.Role = current.Role.String()
	}
	respondJSON(w, http.StatusOK, resp)
}
