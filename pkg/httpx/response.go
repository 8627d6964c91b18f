package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 << 10

// Envelope is the response shape shared by every JSON endpoint.
type Envelope struct {
	Exitoso bool   `json:"exitoso"`
	Mensaje string `json:"mensaje"`
	Codigo  int    `json:"codigo"`
	Datos   any    `json:"datos,omitempty"`
}

// WriteJSON writes v as JSON with the given status code and no-cache headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a successful envelope.
func WriteOK(w http.ResponseWriter, code int, msg string, data any) {
	WriteJSON(w, code, Envelope{Exitoso: true, Mensaje: msg, Codigo: code, Datos: data})
}

// WriteError writes a failed envelope. data may carry field problems.
func WriteError(w http.ResponseWriter, code int, msg string, data any) {
	WriteJSON(w, code, Envelope{Exitoso: false, Mensaje: msg, Codigo: code, Datos: data})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Token responses must never be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ErrBadBody is returned by DecodeJSON for any unreadable request body.
var ErrBadBody = errors.New("httpx: invalid request body")

// DecodeJSON decodes a single JSON object from the request body into dst,
// rejecting unknown fields, trailing data and bodies over MaxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", ErrBadBody)
	}
	return nil
}
