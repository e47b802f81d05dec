package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	payment, err := s.services.Payments.Create(r.Context(), principalFrom(r.Context()).UserID(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "", payment)
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.services.Payments.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeList(w, payments)
}

func (s *Server) userPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	payments, err := s.services.Payments.ListForUser(r.Context(), principalFrom(r.Context()), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeList(w, payments)
}
