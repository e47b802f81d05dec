package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.services.Auth.Register(r.Context(), in)
	s.metrics.AuthOutcome("register", authOutcome(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "User registered successfully", account.Summary())
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.services.Auth.Login(r.Context(), in)
	s.metrics.AuthOutcome("login", authOutcome(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Login successful", res)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	account, err := s.services.Accounts.Me(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", account)
}

// logout only acknowledges; tokens are stateless and expire on their own.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Logged out successfully")
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.services.Accounts.UpdateProfile(r.Context(), principalFrom(r.Context()).UserID(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Profile updated successfully", account)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var in services.PasswordChange
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Accounts.UpdatePassword(r.Context(), principalFrom(r.Context()).UserID(), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Password updated successfully")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Accounts.ForgotPassword(r.Context(), in.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Reset link sent to your email")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in services.PasswordReset
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Accounts.ResetPassword(r.Context(), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Password reset successfully")
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Accounts.Deactivate(r.Context(), principalFrom(r.Context()).UserID()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Account deleted successfully")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.services.Accounts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeList(w, accounts)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in services.AccountUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	account, err := s.services.Accounts.UpdateByID(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "User updated successfully", account)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Accounts.DeactivateByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "User deactivated successfully")
}

func (s *Server) avatarUploadURL(w http.ResponseWriter, r *http.Request) {
	upload, err := s.services.Avatars.UploadURL(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", upload)
}

func (s *Server) avatarURL(w http.ResponseWriter, r *http.Request) {
	link, err := s.services.Avatars.DownloadURL(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", link)
}
