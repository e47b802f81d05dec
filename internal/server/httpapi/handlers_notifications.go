package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	writeList(w, s.services.Notifications.List(r.Context(), principalFrom(r.Context()).UserID()))
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	msg := s.services.Notifications.MarkRead(r.Context(), principalFrom(r.Context()).UserID(), chi.URLParam(r, "id"))
	writeMessage(w, msg)
}
