package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
	"github.com/dmitrijs2005/smarthealth/internal/timex"
	goerrors "github.com/goliatone/go-errors"
)

func (s *Server) addReading(w http.ResponseWriter, r *http.Request) {
	var in services.ReadingInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	reading, err := s.services.Biometrics.Add(r.Context(), principalFrom(r.Context()).UserID(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Biometric data added successfully", reading)
}

func (s *Server) latestReading(w http.ResponseWriter, r *http.Request) {
	reading, err := s.services.Biometrics.Latest(r.Context(), principalFrom(r.Context()).UserID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", reading)
}

// parseHistoryQuery reads startDate, endDate, limit and page. Absent
// values are left zero for the service defaults.
func parseHistoryQuery(v url.Values) (services.HistoryQuery, error) {
	var (
		q       services.HistoryQuery
		details []goerrors.FieldError
		err     error
	)
	if raw := v.Get("startDate"); raw != "" {
		if q.From, err = timex.ParseInstant(raw); err != nil {
			details = append(details, goerrors.FieldError{Field: "startDate", Message: "Invalid date"})
		}
	}
	if raw := v.Get("endDate"); raw != "" {
		if q.To, err = timex.ParseInstant(raw); err != nil {
			details = append(details, goerrors.FieldError{Field: "endDate", Message: "Invalid date"})
		}
	}
	if raw := v.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil || q.Limit < 1 {
			details = append(details, goerrors.FieldError{Field: "limit", Message: "Limit must be a positive integer"})
		}
	}
	if raw := v.Get("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil || q.Page < 1 {
			details = append(details, goerrors.FieldError{Field: "page", Message: "Page must be a positive integer"})
		}
	}
	if len(details) > 0 {
		return q, common.NewValidationError("Invalid query parameters", details...)
	}
	return q, nil
}

func (s *Server) readingHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.services.Biometrics.History(r.Context(), principalFrom(r.Context()).UserID(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []*models.BiometricReading{}
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: items, Pagination: &page.Pagination})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", s.services.Biometrics.Dashboard(r.Context(), principalFrom(r.Context()).UserID()))
}

func (s *Server) realtime(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", s.services.Biometrics.Realtime(r.Context(), principalFrom(r.Context()).UserID()))
}

func (s *Server) battery(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", s.services.Biometrics.Battery(r.Context(), principalFrom(r.Context()).UserID()))
}
