package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mikey/mail-relay/internal/core"
)

// ErrorMessage is the JSON body returned for failed requests
type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errorEnvelope maps an error to a status code and JSON message
func errorEnvelope(err error) ErrorMessage {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrorMessage{
			Code:    http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit),
		}
	}
	if errors.Is(err, errUnsupportedMediaType) {
		return ErrorMessage{
			Code:    http.StatusUnsupportedMediaType,
			Message: "expected application/x-www-form-urlencoded or multipart/form-data",
		}
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ErrorMessage{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	code := rich.Code
	if code == 0 {
		code = http.StatusInternalServerError
	}
	message := rich.Message

	var forwardErr *core.ForwardError
	if errors.As(err, &forwardErr) {
		message = fmt.Sprintf("%s message failed: %s", forwardErr.Stage, message)
	}
	return ErrorMessage{Code: code, Message: message}
}

func writeError(w http.ResponseWriter, envelope ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.Code)
	_ = json.NewEncoder(w).Encode(envelope)
}
