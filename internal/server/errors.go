package server

import (
	"encoding/json"
	"errors"
	"kvk-ranker/internal/middleware"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/scoring"
	"kvk-ranker/internal/session"
	"net/http"

	"github.com/rs/zerolog"
)

var errBadRequest = errors.New("bad request")

type badRequest struct {
	reason string
}

func (e *badRequest) Error() string { return e.reason }
func (e *badRequest) Unwrap() error { return errBadRequest }

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func statusFor(err error) (int, errorBody) {
	body := errorBody{Error: err.Error(), Kind: string(scoring.KindOf(err))}

	switch scoring.KindOf(err) {
	case scoring.KindConfiguration:
		return http.StatusPreconditionFailed, body
	case scoring.KindValidation:
		return http.StatusUnprocessableEntity, body
	case scoring.KindPrecondition:
		return http.StatusConflict, body
	case scoring.KindTransport, scoring.KindMalformedPayload:
		return http.StatusBadGateway, body
	}

	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrKingdomNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, repository.ErrHandoffMissing):
		body.Redirect = "/"
		return http.StatusNotFound, body
	case errors.Is(err, session.ErrLastKingdom), errors.Is(err, session.ErrUploadSuperseded):
		return http.StatusConflict, body
	case errors.Is(err, report.ErrUnknownPreset), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, body
	}

	body.Error = "internal error"
	return http.StatusInternalServerError, body
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	body.RequestID = middleware.GetRequestID(r.Context())

	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
