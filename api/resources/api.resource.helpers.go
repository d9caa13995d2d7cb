package resources

import (
	"encoding/json"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/itsatony/rahub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	// html checkboxes post "on"
	d.RegisterConverter(false, func(s string) reflect.Value {
		switch strings.ToLower(s) {
		case "on", "1", "true", "yes":
			return reflect.ValueOf(true)
		case "", "off", "0", "false", "no":
			return reflect.ValueOf(false)
		}
		return reflect.Value{}
	})
	return d
}

// decodeBody fills dst from a JSON body or from url-encoded/multipart form fields.
func decodeBody(r *http.Request, dst interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
			return errors.NewValidationError("invalid form body", err)
		}
		if err := formDecoder.Decode(dst, r.PostForm); err != nil {
			return errors.NewValidationError("invalid form body", err)
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.NewValidationError("invalid request body", err)
		}
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("invalid "+name, err)
	}
	return id, nil
}

// toAPIError keeps the kind of a service error and hides everything else
// behind an internal error.
func toAPIError(err error, fallback string) *errors.APIError {
	if apiErr, ok := errors.As(err); ok {
		return apiErr
	}
	return errors.NewInternalError(fallback, err)
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
