package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/domain/product"
	"github.com/kailas-cloud/shoprec/internal/domain/recommendation"
	healthuc "github.com/kailas-cloud/shoprec/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface on top of the recommendation chain.
type Server struct {
	recommender   domain.Recommender
	health        *healthuc.Service
	defaultLimit  int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. defaultLimit is used when the
// request carries no limit parameter.
func NewServer(
	recommender domain.Recommender,
	health *healthuc.Service,
	defaultLimit int,
	logger *zap.Logger,
) *Server {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultRecommendConfig().DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		recommender:  recommender,
		health:       health,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidUserID, http.StatusBadRequest, ErrorResponseCodeInvalidUserID),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest, ErrorResponseCodeInvalidLimit),
		sentinelHandler(domain.ErrDataUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeDataUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorResponseCodeTimeout),
	}
	return s
}

// Handler mounts the API routes on a fresh chi router.
func (s *Server) Handler(options ChiServerOptions) http.Handler {
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = s.ParamErrorHandler
	}
	return HandlerWithOptions(s, options)
}

// ParamErrorHandler answers requests whose parameters failed to bind.
func (s *Server) ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		switch pe.ParamName {
		case "limit":
			writeError(w, http.StatusBadRequest, ErrorResponseCodeInvalidLimit, "limit must be a non-negative integer")
			return
		case "userID":
			writeError(w, http.StatusBadRequest, ErrorResponseCodeInvalidUserID, domain.ErrInvalidUserID.Error())
			return
		}
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "bad request")
}

// GetUserRecommendations handles GET /api/v1/users/{userID}/recommendations.
func (s *Server) GetUserRecommendations(
	w http.ResponseWriter, r *http.Request, userID string, params GetUserRecommendationsParams,
) {
	limit := s.defaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	res, err := s.recommender.Recommend(r.Context(), userID, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("X-Recommendation-Source", string(res.Source))
	writeJSON(w, http.StatusOK, resultToAPI(userID, &res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidUserID,
		domain.ErrInvalidLimit,
		domain.ErrDataUnavailable,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func resultToAPI(userID string, res *recommendation.Result) RecommendationResponse {
	items := make([]Product, len(res.Items))
	for i := range res.Items {
		items[i] = productToAPI(&res.Items[i])
	}
	return RecommendationResponse{
		UserID: userID,
		Source: string(res.Source),
		Reason: string(res.Reason),
		Count:  len(items),
		Items:  items,
	}
}

func productToAPI(p *product.Product) Product {
	return Product{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		ImageURL:   p.ImageURL,
		PriceCents: p.PriceCents,
		CreatedAt:  p.CreatedAt,
	}
}
