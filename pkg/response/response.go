package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"erauchess-api/pkg/apierror"

	"github.com/samber/oops"
)

// ErrNotObject is returned when a success payload serializes to something
// other than a JSON object or null, or to an object that already has a
// top-level "status" key.
var ErrNotObject = errors.New("payload must serialize to a JSON object or null")

var (
	nullLiteral   = []byte("null")
	statusKey     = []byte(`"status"`)
	successOnly   = []byte(`{"status":"success"}`)
	successSuffix = []byte(`,"status":"success"}`)
)

// failureBody keeps "status" ahead of "error" on the wire.
type failureBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Encode serializes a success payload and injects "status":"success" as a
// top-level sibling of the payload's own fields.
func Encode(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return splice(body)
}

// splice rewrites an already-serialized payload without re-parsing it.
func splice(body []byte) ([]byte, error) {
	if bytes.Equal(body, nullLiteral) {
		return bytes.Clone(successOnly), nil
	}

	n := len(body)
	if n < 2 || body[0] != '{' || body[n-1] != '}' {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, preview(body))
	}

	if len(bytes.TrimSpace(body[1:n-1])) == 0 {
		return bytes.Clone(successOnly), nil
	}

	if bytes.Contains(body, statusKey) {
		taken, err := hasTopLevelStatus(body)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect payload: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: top-level \"status\" key is reserved", ErrNotObject)
		}
	}

	out := make([]byte, 0, n+len(successSuffix)-1)
	out = append(out, body[:n-1]...)
	out = append(out, successSuffix...)
	return out, nil
}

// hasTopLevelStatus reports whether the object in body has its own
// "status" member. Nested objects may use the name freely.
func hasTopLevelStatus(body []byte) (bool, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return false, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return false, err
		}
		if key, _ := tok.(string); key == "status" {
			return true, nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return false, err
		}
	}
	return false, nil
}

// EncodeFailure serializes an API error and returns the body with its status code.
func EncodeFailure(apiErr *apierror.Error) ([]byte, int) {
	body, err := json.Marshal(failureBody{Status: "failure", Error: apiErr.Message()})
	if err != nil {
		// A struct of two strings cannot fail to marshal.
		panic(err)
	}
	return body, apiErr.StatusCode()
}

// OK sends a 200 response with the payload enveloped. A payload that breaks
// the object-or-null rule is answered as an Unknown error instead.
func OK(w http.ResponseWriter, r *http.Request, payload any) {
	body, err := Encode(payload)
	if err != nil {
		Error(w, r, apierror.Unknown("internal error").WithCause(err))
		return
	}
	write(w, http.StatusOK, body)
}

// Error sends a failure envelope. Errors that are not *apierror.Error are
// treated as Unknown and their text is kept server-side.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.Unknown("an unexpected error occurred").WithCause(err)
	}

	if apiErr.Kind == apierror.KindUnknown || apiErr.Kind == apierror.KindStoreFailure {
		logFailure(r, apiErr)
	}

	body, status := EncodeFailure(apiErr)
	write(w, status, body)
}

// Send writes either the payload or the error, whichever the handler produced.
func Send(w http.ResponseWriter, r *http.Request, payload any, err error) {
	if err != nil {
		Error(w, r, err)
		return
	}
	OK(w, r, payload)
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func logFailure(r *http.Request, apiErr *apierror.Error) {
	attrs := []any{
		"kind", apiErr.Kind.String(),
		"message", apiErr.Message(),
		"method", r.Method,
		"path", r.URL.Path,
	}
	if apiErr.Cause != nil {
		attrs = append(attrs, "error", apiErr.Cause.Error())
		if oopsErr, ok := oops.AsOops(apiErr.Cause); ok {
			details := oopsErr.ToMap()
			for _, key := range []string{"code", "context"} {
				if v, ok := details[key]; ok {
					attrs = append(attrs, key, v)
				}
			}
		}
	}
	slog.ErrorContext(r.Context(), "request failed", attrs...)
}

func preview(body []byte) string {
	const limit = 32
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
