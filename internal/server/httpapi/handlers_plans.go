package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/server/services"
)

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.services.Plans.List(r.Context(), r.URL.Query().Get("isAdmin") == "true")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeList(w, plans)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.services.Plans.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", plan)
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	var in services.PlanInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.services.Plans.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "", plan)
}

func (s *Server) updatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in services.PlanInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.services.Plans.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", plan)
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Plans.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, "Plan deleted successfully")
}

func (s *Server) setPlanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.services.Plans.SetStatus(r.Context(), id, in.IsActive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", plan)
}
