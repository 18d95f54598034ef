package handler

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"erauchess-api/pkg/apierror"
)

// maxFormBytes bounds request bodies; scorecard photos are the largest field.
const maxFormBytes = 10 << 20

// form wraps parsed request values with typed accessors.
type form struct {
	r *http.Request
}

// parseForm accepts urlencoded and multipart bodies.
func parseForm(w http.ResponseWriter, r *http.Request) (form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form{}, apierror.InvalidInput("request body too large")
		}
		return form{}, apierror.InvalidInput("malformed form body").WithCause(err)
	}
	return form{r: r}, nil
}

func (f form) text(name string) string {
	return strings.TrimSpace(f.r.PostFormValue(name))
}

// raw returns the field untrimmed, for secrets.
func (f form) raw(name string) string {
	return f.r.PostFormValue(name)
}

func (f form) optionalText(name string) *string {
	v := f.text(name)
	if v == "" {
		return nil
	}
	return &v
}

func (f form) integer(name string) (int64, error) {
	v := f.text(name)
	if v == "" {
		return 0, apierror.InvalidInputf("%s is required", name)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, apierror.InvalidInputf("%s must be an integer", name)
	}
	return n, nil
}

func (f form) optionalInteger(name string) (*int64, error) {
	if f.text(name) == "" {
		return nil, nil
	}
	n, err := f.integer(name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f form) number(name string) (float64, error) {
	v := f.text(name)
	if v == "" {
		return 0, apierror.InvalidInputf("%s is required", name)
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apierror.InvalidInputf("%s must be a number", name)
	}
	return x, nil
}

// unix reads a timestamp in seconds since the epoch.
func (f form) unix(name string) (time.Time, error) {
	n, err := f.integer(name)
	if err != nil {
		return time.Time{}, err
	}
	if n <= 0 {
		return time.Time{}, apierror.InvalidInputf("%s must be a positive unix timestamp", name)
	}
	return time.Unix(n, 0).UTC(), nil
}

func (f form) optionalUnix(name string) (time.Time, error) {
	if f.text(name) == "" {
		return time.Time{}, nil
	}
	return f.unix(name)
}

func (f form) optionalBase64(name string) ([]byte, error) {
	v := f.text(name)
	if v == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, apierror.InvalidInputf("%s must be base64", name)
	}
	return b, nil
}
