package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/ariefcatur/erp-lite/internal/validate"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
)

// Responder renders JSON bodies and maps errors onto status codes. Debug adds
// internal error text to 500 responses.
type Responder struct {
	Log   *logrus.Entry
	Debug bool
}

type errorBody struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (rs *Responder) JSON(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, v)
}

func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	status := e.HTTPStatus()

	entry := logging.FromContext(r.Context(), rs.log()).WithFields(logrus.Fields{
		"method": r.Method, "path": r.URL.Path, "status": status, "code": e.Code,
	})
	body := errorBody{Message: e.Message, Code: e.Code, Details: e.Details}
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
		if rs.Debug {
			body.Error = err.Error()
		}
	} else {
		entry.Debug(e.Message)
	}
	writeJSON(w, status, body)
}

func (rs *Responder) log() *logrus.Entry {
	if rs.Log != nil {
		return rs.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

var errBadJSON = apperr.New(apperr.KindValidation, "INVALID_JSON", "invalid json")

// decodeJSON reads one JSON object into v. An empty body decodes to the zero
// value. A member of the wrong type is reported against its field.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		msg := validate.DecodeMessage(err)
		return apperr.Validation(te.Field+" "+msg).WithDetails("fields", map[string]string{te.Field: msg})
	}
	return errBadJSON.WithDetails("reason", err.Error())
}
