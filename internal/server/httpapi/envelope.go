package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const msgSomethingWentWrong = "Something went wrong"

// response is the success envelope shared by every endpoint.
type response struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Count      *int                 `json:"count,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Details goerrors.ValidationErrors `json:"details,omitempty"`
}

// nullData forces "data": null into an otherwise empty envelope.
var nullData = json.RawMessage("null")

type errorCode struct {
	status int
	code   string
}

// errorCodes maps error categories to the HTTP status and envelope code.
// Categories missing here are answered as internal errors.
var errorCodes = map[goerrors.Category]errorCode{
	goerrors.CategoryValidation: {http.StatusBadRequest, common.TextCodeValidation},
	goerrors.CategoryBadInput:   {http.StatusBadRequest, common.TextCodeValidation},
	goerrors.CategoryAuth:       {http.StatusUnauthorized, common.TextCodeUnauthorized},
	goerrors.CategoryAuthz:      {http.StatusForbidden, common.TextCodeForbidden},
	goerrors.CategoryNotFound:   {http.StatusNotFound, common.TextCodeNotFound},
	goerrors.CategoryConflict:   {http.StatusConflict, common.TextCodeConflict},
	goerrors.CategoryRateLimit:  {http.StatusTooManyRequests, common.TextCodeTooManyRequests},
}

var internalError = errorCode{http.StatusInternalServerError, common.TextCodeInternal}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: message})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	writeJSON(w, http.StatusOK, response{Success: true, Count: &n, Data: items})
}

// writeError renders err in the error envelope. Internal errors are logged
// and their text reaches the client only in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := common.AsError(err); ok {
		if ec, known := errorCodes[e.Category]; known {
			writeJSON(w, ec.status, errorResponse{Error: errorBody{
				Code:    ec.code,
				Message: e.Message,
				Details: e.ValidationErrors,
			}})
			return
		}
	}

	s.logger.Error(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "error", err)
	body := errorBody{Code: internalError.code, Message: msgSomethingWentWrong}
	if s.config.IsDevelopment() {
		body.Message = err.Error()
	}
	writeJSON(w, internalError.status, errorResponse{Error: body})
}

// decodeJSON reads a JSON object into dst. An empty body leaves dst as is.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.NewValidationError("Request body is too large")
	}
	return common.WithCause(common.NewValidationError("Invalid JSON body"), err)
}

// pathID returns the URL parameter name, which must be a UUID.
func pathID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", common.NewValidationError("Invalid ID format")
	}
	return id.String(), nil
}
