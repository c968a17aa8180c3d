// Package response writes the uniform JSON envelopes and decodes request bodies.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
)

// Envelope wraps every successful response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Status     bool   `json:"status"`
}

// Failure is the body of every failed request.
type Failure struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Success(w http.ResponseWriter, status int, data any, message string) {
	if message == "" {
		message = "Success"
	}
	JSON(w, status, Envelope{StatusCode: status, Data: data, Message: message, Status: status < 400})
}

// Error writes err as a failure envelope. Only the client message of an
// *apperr.Error reaches the body; causes stay server side.
func Error(w http.ResponseWriter, err error) {
	JSON(w, apperr.StatusOf(err), Failure{Message: apperr.MessageOf(err), Success: false})
}
