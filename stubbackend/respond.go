package stubbackend

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-pos-console/api"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// writeEnvelope writes a success envelope around payload.
func writeEnvelope(w http.ResponseWriter, status int, payload any, pagination *api.Pagination) {
	writeJSON(w, status, api.Envelope[any]{
		Status:     "success",
		StatusCode: status,
		Payload:    payload,
		Pagination: pagination,
	})
}

// writeError writes a failure envelope with a fresh reference id, logged for correlation.
func writeError(w http.ResponseWriter, status int, detail string) {
	ref := uuid.New().String()
	log.Info().Int("status_code", status).Str("reference_id", ref).Msg(detail)
	writeJSON(w, status, api.Envelope[api.MessagePayload]{
		Status:     "error",
		StatusCode: status,
		Payload:    api.MessagePayload{Message: http.StatusText(status)},
		Error:      &api.ErrorBody{DetailMessage: detail, ReferenceID: ref},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}
