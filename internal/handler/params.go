package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/numbering"
)

// pathParam binds a required path parameter into dest.
func pathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// queryParam binds an optional query parameter into dest.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// reportNumber reads {number}. Both the slug ("006-02-01-24") and the
// escaped number ("006%2F02%2F01%2F24") are accepted.
func reportNumber(r *http.Request) (string, error) {
	var v string
	if err := pathParam(r, "number", &v); err != nil {
		return "", err
	}
	return numbering.FromSlug(v), nil
}

// entryKey reads {key} as an entry or vehicle key.
func entryKey(r *http.Request) (uuid.UUID, error) {
	var key uuid.UUID
	if err := pathParam(r, "key", &key); err != nil {
		return uuid.Nil, err
	}
	return key, nil
}

// readBody reads the whole request body, reporting an oversize body as errTooLarge.
func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	return b, nil
}

// decodeBody decodes a JSON request body into v. An empty or malformed body
// is a validation failure of the "body" field.
func decodeBody(r *http.Request, v any) error {
	b, err := readBody(r)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return domain.NewFieldError("body", "is required")
	}
	return decodeBytes(b, v)
}

func decodeBytes(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return domain.NewFieldError("body", "is not valid JSON: "+err.Error())
	}
	return nil
}
