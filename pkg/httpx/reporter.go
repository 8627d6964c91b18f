package httpx

import (
	"net/http"
	"strconv"
)

// Fixed payloads for denials that carry no body of their own. They are
// written byte for byte; clients match on them.
var (
	unauthorizedBody = []byte(`{"exitoso":false,"mensaje":"Token inválido o expirado","codigo":401}`)
	forbiddenBody    = []byte(`{"exitoso":false,"mensaje":"Acceso denegado: permisos insuficientes","codigo":403}`)
)

// ReportAccessDenials rewrites bodiless 401 and 403 responses into the fixed
// JSON payloads. A handler that writes its own body after the status keeps
// it; every other status passes through untouched.
func ReportAccessDenials() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dw := &denialWriter{ResponseWriter: w}
			next.ServeHTTP(dw, r)
			dw.finish()
		})
	}
}

type denialWriter struct {
	http.ResponseWriter

	wroteHeader bool
	pending     int // deferred 401/403 awaiting either a body or finish
}

func (dw *denialWriter) WriteHeader(code int) {
	if dw.wroteHeader {
		return
	}
	dw.wroteHeader = true
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		dw.pending = code
		return
	}
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *denialWriter) Write(b []byte) (int, error) {
	if !dw.wroteHeader {
		dw.WriteHeader(http.StatusOK)
	}
	if dw.pending != 0 {
		if len(b) == 0 {
			return 0, nil
		}
		dw.commitPending()
	}
	return dw.ResponseWriter.Write(b)
}

// Flush commits a deferred status before flushing; a flushed denial counts as
// handled by the handler.
func (dw *denialWriter) Flush() {
	if dw.pending != 0 {
		dw.commitPending()
	}
	if f, ok := dw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (dw *denialWriter) Unwrap() http.ResponseWriter {
	return dw.ResponseWriter
}

func (dw *denialWriter) commitPending() {
	code := dw.pending
	dw.pending = 0
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *denialWriter) finish() {
	if dw.pending == 0 {
		return
	}
	body := unauthorizedBody
	if dw.pending == http.StatusForbidden {
		body = forbiddenBody
	}
	h := dw.ResponseWriter.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Del("Content-Encoding")
	NoCache(dw.ResponseWriter)

	dw.commitPending()
	_, _ = dw.ResponseWriter.Write(body)
}
