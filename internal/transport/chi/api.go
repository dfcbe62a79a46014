package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorResponseCodeBadRequest      ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized    ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound        ErrorResponseCode = "not_found"
	ErrorResponseCodeInvalidUserID   ErrorResponseCode = "invalid_user_id"
	ErrorResponseCodeInvalidLimit    ErrorResponseCode = "invalid_limit"
	ErrorResponseCodeDataUnavailable ErrorResponseCode = "data_unavailable"
	ErrorResponseCodeTimeout         ErrorResponseCode = "timeout"
	ErrorResponseCodeInternalError   ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// Product is a recommended catalog entry.
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecommendationResponse is the body of GET /api/v1/users/{userID}/recommendations.
type RecommendationResponse struct {
	UserID string    `json:"user_id"`
	Source string    `json:"source"`
	Reason string    `json:"reason,omitempty"`
	Count  int       `json:"count"`
	Items  []Product `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetUserRecommendationsParams holds the query parameters of the recommendations route.
type GetUserRecommendationsParams struct {
	// Limit is the maximum number of products; nil means the server default.
	Limit *int `json:"limit,omitempty"`
}

// ServerInterface is the set of API operations.
type ServerInterface interface {
	// GetUserRecommendations handles GET /api/v1/users/{userID}/recommendations.
	GetUserRecommendations(w http.ResponseWriter, r *http.Request, userID string, params GetUserRecommendationsParams)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// Route patterns served by Handler.
const (
	HealthPath          = "/health"
	MetricsPath         = "/metrics"
	RecommendationsPath = "/api/v1/users/{userID}/recommendations"
)

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// HandlerWithOptions registers the API routes on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wrapper := &serverInterfaceWrapper{handler: si, errorHandler: errorHandler}

	r.Get(HealthPath, si.HealthCheck)
	r.Get(MetricsPath, si.Metrics)
	r.Get(RecommendationsPath, wrapper.GetUserRecommendations)
	return r
}

type serverInterfaceWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *serverInterfaceWrapper) GetUserRecommendations(rw http.ResponseWriter, r *http.Request) {
	userID, err := url.PathUnescape(chi.URLParam(r, "userID"))
	if err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "userID", Err: err})
		return
	}

	var params GetUserRecommendationsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	w.handler.GetUserRecommendations(rw, r, userID, params)
}
