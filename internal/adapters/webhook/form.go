package webhook

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mikey/mail-relay/internal/core"
)

// ErrorMalformedBody marks a request body that could not be parsed as a form
const ErrorMalformedBody = "MALFORMED_BODY"

// Provider webhook field names
const (
	FieldSender         = "sender"
	FieldFrom           = "from"
	FieldSubject        = "subject"
	FieldBodyPlain      = "body-plain"
	FieldTimestamp      = "timestamp"
	FieldToken          = "token"
	FieldSignature      = "signature"
	FieldMessageHeaders = "message-headers"
)

var requiredFields = []string{
	FieldSender,
	FieldFrom,
	FieldSubject,
	FieldBodyPlain,
	FieldTimestamp,
	FieldToken,
	FieldSignature,
	FieldMessageHeaders,
}

var errUnsupportedMediaType = errors.New("unsupported content type")

// decodeReceivedEmail picks the form adapter matching the request's content type
func decodeReceivedEmail(r *http.Request) (*core.ReceivedEmail, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, errUnsupportedMediaType
	}

	var values map[string]string
	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err = urlencodedValues(r)
	case "multipart/form-data":
		values, err = multipartValues(r)
	default:
		return nil, errUnsupportedMediaType
	}
	if err != nil {
		return nil, malformedBody(err)
	}
	return newReceivedEmail(values)
}

func malformedBody(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed form body").
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorMalformedBody)
}

func urlencodedValues(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		if v, ok := r.PostForm[name]; ok && len(v) > 0 {
			values[name] = v[0]
		}
	}
	return values, nil
}

// multipartValues streams the parts and keeps the known fields; a part that is
// not valid UTF-8 counts as absent
func multipartValues(r *http.Request) (map[string]string, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(requiredFields))
	for _, name := range requiredFields {
		known[name] = true
	}

	values := make(map[string]string, len(requiredFields))
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := part.FormName()
		if !known[name] {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			delete(values, name)
			continue
		}
		values[name] = string(data)
	}
	return values, nil
}

// newReceivedEmail is the single required-field check shared by both adapters
func newReceivedEmail(values map[string]string) (*core.ReceivedEmail, error) {
	var missing []string
	for _, name := range requiredFields {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}

	var timestamp int64
	if raw, ok := values[FieldTimestamp]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			missing = append(missing, FieldTimestamp)
		}
		timestamp = parsed
	}

	if len(missing) > 0 {
		return nil, core.MissingRequiredField(missing)
	}

	return &core.ReceivedEmail{
		Sender:         values[FieldSender],
		From:           values[FieldFrom],
		Subject:        values[FieldSubject],
		BodyPlain:      values[FieldBodyPlain],
		Timestamp:      timestamp,
		Token:          values[FieldToken],
		Signature:      values[FieldSignature],
		MessageHeaders: values[FieldMessageHeaders],
	}, nil
}

// EncodeValues renders email as provider webhook form fields
func EncodeValues(email *core.ReceivedEmail) map[string]string {
	return map[string]string{
		FieldSender:         email.Sender,
		FieldFrom:           email.From,
		FieldSubject:        email.Subject,
		FieldBodyPlain:      email.BodyPlain,
		FieldTimestamp:      fmt.Sprintf("%d", email.Timestamp),
		FieldToken:          email.Token,
		FieldSignature:      email.Signature,
		FieldMessageHeaders: email.MessageHeaders,
	}
}
