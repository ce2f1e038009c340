package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorSignatureInvalid          = "SIGNATURE_INVALID"
	ErrorMalformedProviderResponse = "MALFORMED_PROVIDER_RESPONSE"
	ErrorProviderError             = "PROVIDER_ERROR"
	ErrorMissingMessageID          = "MISSING_MESSAGE_ID"
	ErrorMissingRequiredField      = "MISSING_REQUIRED_FIELD"
)

func relayError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func relayWrapError(source error, message string, category goerrors.Category, code int, textCode string, metadata map[string]any) *goerrors.Error {
	if source == nil {
		return relayError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// SignatureInvalid is returned when a notification fails HMAC verification
func SignatureInvalid(message string) error {
	return relayError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorSignatureInvalid, nil)
}

// MalformedProviderResponse is returned when provider data cannot be decoded
func MalformedProviderResponse(source error, message string) error {
	return relayWrapError(source, message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorMalformedProviderResponse, nil)
}

// ProviderError is returned when an outbound provider rejects a call or cannot be reached
func ProviderError(source error, provider string, message string) error {
	return relayWrapError(source, message, goerrors.CategoryExternal, http.StatusInternalServerError, ErrorProviderError,
		map[string]any{"provider": provider})
}

// MissingMessageID is returned when the raw headers carry no Message-Id
func MissingMessageID() error {
	return relayError("no message id found", goerrors.CategoryExternal, http.StatusInternalServerError, ErrorMissingMessageID, nil)
}

// MissingRequiredField is returned when an inbound notification lacks required fields
func MissingRequiredField(fields []string) error {
	return relayError(
		"missing required fields: "+strings.Join(fields, ", "),
		goerrors.CategoryValidation,
		http.StatusBadRequest,
		ErrorMissingRequiredField,
		map[string]any{"fields": fields},
	)
}

// HasTextCode reports whether err carries the given relay error code
func HasTextCode(err error, textCode string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}
