package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/secureapp/internal/common"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type verify2FARequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginVerifyRequest struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// internalError logs the cause and returns a generic body so internal
// detail never reaches the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), err.Error())
	errorJSON(w, http.StatusInternalServerError, "An error occurred.")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Please fill out all required fields.")
		return
	}

	reg, err := s.accounts.Register(r.Context(), in.FirstName, in.LastName, in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			errorJSON(w, http.StatusBadRequest, "Please fill out all required fields.")
		case errors.Is(err, common.ErrConflict):
			errorJSON(w, http.StatusConflict, "User with this email already exists.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	s.logger.Info(r.Context(), "Registered", "userId", reg.User.ID)

	writeJSON(w, http.StatusOK, map[string]string{
		"userId":     reg.User.ID,
		"qrCodeUrl":  "data:image/png;base64," + base64.StdEncoding.EncodeToString(reg.QRPNG),
		"otpauthUrl": reg.ProvisioningURI,
	})
}

func (s *Server) handleVerify2FA(w http.ResponseWriter, r *http.Request) {
	var in verify2FARequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "Invalid 2FA code.")
		return
	}

	if err := s.accounts.ConfirmEnrollment(r.Context(), in.UserID, in.Token); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			errorJSON(w, http.StatusNotFound, "User not found.")
		case errors.Is(err, common.ErrInvalidCode):
			errorJSON(w, http.StatusBadRequest, "Invalid 2FA code.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "2FA has been successfully enabled!"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	sessionID, err := s.ensureSession(w, r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	if err := s.accounts.BeginLogin(r.Context(), sessionID, in.Email, in.Password); err != nil {
		if errors.Is(err, common.ErrAuth) {
			errorJSON(w, http.StatusUnauthorized, "Invalid credentials or 2FA not enabled.")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password correct. Please provide 2FA token."})
}

func (s *Server) handleLoginVerify(w http.ResponseWriter, r *http.Request) {
	var in loginVerifyRequest
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusUnauthorized, "Invalid 2FA code.")
		return
	}

	sessionID, ok := s.sessionFromRequest(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "Please enter your password first.")
		return
	}

	if err := s.accounts.CompleteLogin(r.Context(), sessionID, in.Token); err != nil {
		switch {
		case errors.Is(err, common.ErrAuth):
			errorJSON(w, http.StatusUnauthorized, "Please enter your password first.")
		case errors.Is(err, common.ErrNotFound):
			errorJSON(w, http.StatusNotFound, "User not found.")
		case errors.Is(err, common.ErrInvalidCode):
			errorJSON(w, http.StatusUnauthorized, "Invalid 2FA code.")
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful!"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.sessionFromRequest(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "You are not authorized.")
		return
	}

	user, err := s.accounts.Admit(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			errorJSON(w, http.StatusUnauthorized, "You are not authorized.")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Welcome to your dashboard, %s!", user.FirstName),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := s.sessionFromRequest(r); ok {
		s.accounts.Logout(r.Context(), sessionID)
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful."})
}
