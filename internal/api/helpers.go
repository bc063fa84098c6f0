package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/jenkins"
)

// maxDocumentSize bounds config.xml request bodies.
const maxDocumentSize = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeFacadeError maps facade errors onto HTTP statuses.
func writeFacadeError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var unsupported *jenkins.UnsupportedOperationError
	var transport *jenkins.TransportError
	switch {
	case errors.Is(err, configxml.ErrMalformedDocument), errors.Is(err, configxml.ErrMissingSection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, configxml.ErrDuplicateParameter):
		return http.StatusConflict
	case errors.Is(err, configxml.ErrParameterNotFound):
		return http.StatusNotFound
	case errors.Is(err, configxml.ErrUnsupportedViewType), errors.Is(err, jenkins.ErrInvalidDescriptor):
		return http.StatusBadRequest
	case errors.As(err, &unsupported):
		return http.StatusMethodNotAllowed
	case errors.As(err, &transport):
		if transport.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// param returns a decoded URL parameter. Folder jobs are addressed with an
// escaped slash (team%2Fapp).
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil && n > 0
}

// formValue reads a query or form parameter, trimmed.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formList reads a repeated parameter; a single comma separated value is
// split.
func formList(r *http.Request, name string) []string {
	r.ParseForm()
	var out []string
	for _, v := range r.Form[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// readDocument returns the XML document of a request: the raw body, unless the
// request is a form, in which case the named field.
func readDocument(r *http.Request, field string) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.FormValue(field), nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return r.URL.Query().Get(field), nil
	}
	return string(data), nil
}

// requireParams takes name, value pairs and reports the first empty one.
func requireParams(w http.ResponseWriter, pairs ...string) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			writeError(w, http.StatusBadRequest, pairs[i]+" is required")
			return false
		}
	}
	return true
}
