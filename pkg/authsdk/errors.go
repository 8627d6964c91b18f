package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// Machine readable error codes carried in ErrorDetails.Error.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeValidation           = "validation_error"
	ErrorCodeInvalidCredentials   = "invalid_credentials"
	ErrorCodeRefreshNotFound      = "refresh_not_found"
	ErrorCodeRefreshExpired       = "refresh_expired"
	ErrorCodeReuseDetected        = "reuse_detected"
	ErrorCodeInvalidOrExpired     = "invalid_or_expired"
	ErrorCodeWrongCurrentPassword = "wrong_current_password"
	ErrorCodeUserNotFound         = "user_not_found"
	ErrorCodeEmailTaken           = "email_taken"
	ErrorCodeRateLimited          = "rate_limited"
	ErrorCodeUnauthorized         = "unauthorized"
	ErrorCodeForbidden            = "forbidden"
	ErrorCodeServerError          = "server_error"
)

// APIError is a failed response of the auth service. Handlers write it and
// the client returns it.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Problems   map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is matches on status and code so errors.Is(err, authsdk.ErrReuseDetected)
// works on errors decoded from a response.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WithProblems returns a copy of e carrying field problems.
func (e *APIError) WithProblems(problems map[string]string) *APIError {
	cp := *e
	cp.Problems = problems
	return &cp
}

// WriteError writes e in the response envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Message, ErrorDetails{Error: e.Code, Problems: e.Problems})
}

func newAPIError(status int, code, msg string) *APIError {
	return &APIError{StatusCode: status, Code: code, Message: msg}
}

var (
	ErrInvalidRequest = newAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest,
		"Solicitud inválida")
	ErrValidation = newAPIError(http.StatusBadRequest, ErrorCodeValidation,
		"Datos de entrada inválidos")
	ErrInvalidCredentials = newAPIError(http.StatusUnauthorized, ErrorCodeInvalidCredentials,
		"Credenciales inválidas")
	ErrRefreshNotFound = newAPIError(http.StatusUnauthorized, ErrorCodeRefreshNotFound,
		"Token de actualización inválido")
	ErrRefreshExpired = newAPIError(http.StatusUnauthorized, ErrorCodeRefreshExpired,
		"Token de actualización expirado")
	ErrReuseDetected = newAPIError(http.StatusUnauthorized, ErrorCodeReuseDetected,
		"Token de actualización reutilizado; se cerraron todas las sesiones")
	ErrInvalidOrExpired = newAPIError(http.StatusBadRequest, ErrorCodeInvalidOrExpired,
		"Código inválido o expirado")
	ErrWrongCurrentPassword = newAPIError(http.StatusBadRequest, ErrorCodeWrongCurrentPassword,
		"La contraseña actual es incorrecta")
	ErrUserNotFound = newAPIError(http.StatusNotFound, ErrorCodeUserNotFound,
		"Usuario no encontrado")
	ErrEmailTaken = newAPIError(http.StatusConflict, ErrorCodeEmailTaken,
		"El correo ya está registrado")
	ErrServerError = newAPIError(http.StatusInternalServerError, ErrorCodeServerError,
		"Error interno del servidor")
)

// parseErrorResponse turns a non-2xx response body into an *APIError. The
// bodies written by the access denial reporter carry no details and map to
// the unauthorized and forbidden codes.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Mensaje != "" {
		apiErr.Message = env.Mensaje
		var details ErrorDetails
		if len(env.Datos) > 0 && json.Unmarshal(env.Datos, &details) == nil {
			apiErr.Code = details.Error
			apiErr.Problems = details.Problems
		}
	} else {
		apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if apiErr.Code == "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr.Code = ErrorCodeUnauthorized
		case http.StatusForbidden:
			apiErr.Code = ErrorCodeForbidden
		case http.StatusTooManyRequests:
			apiErr.Code = ErrorCodeRateLimited
		default:
			apiErr.Code = ErrorCodeServerError
		}
	}
	return apiErr
}

// StatusCode extracts the HTTP status of an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
