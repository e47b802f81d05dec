package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var in services.SubscribeInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.services.Subscriptions.Subscribe(r.Context(), principalFrom(r.Context()).UserID(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "", sub)
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.services.Subscriptions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeList(w, subs)
}

// mySubscription answers "data": null when the caller has no active
// subscription.
func (s *Server) mySubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.services.Subscriptions.Mine(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sub == nil {
		writeData(w, http.StatusOK, "", nullData)
		return
	}
	writeData(w, http.StatusOK, "", sub)
}

func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.services.Subscriptions.Cancel(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Subscription cancelled successfully", sub)
}
