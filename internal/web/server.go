package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/svanholten/letterbox/internal/errorz"
	"github.com/svanholten/letterbox/internal/subscription"
)

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger  *slog.Logger
	Service *subscription.Service
}

type Server struct {
	deps    *ServerDeps
	decoder *schema.Decoder
	metrics *Metrics
	handler http.Handler
}

func NewServer(deps *ServerDeps) *Server {
	s := &Server{
		deps:    deps,
		decoder: schema.NewDecoder(),
	}

	registry := prometheus.NewRegistry()
	s.metrics = newMetrics(registry)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health_check", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/subscriptions", s.handleSubscribe)
	r.Get("/subscriptions/confirm", s.handleConfirm)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.handler = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// subscribeForm is the form data posted by new subscribers.
type subscribeForm struct {
	Name  string `schema:"name"`
	Email string `schema:"email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var form subscribeForm
	if err := s.decoder.Decode(&form, r.PostForm); err != nil {
		s.handleError(w, r, decodeError(err))
		return
	}

	id, err := s.deps.Service.Subscribe(r.Context(), subscription.SubscribeRequest{
		Name:  form.Name,
		Email: form.Email,
	})
	if err != nil {
		s.metrics.SubscriptionFailures.WithLabelValues("subscribe").Inc()
		s.handleError(w, r, err)
		return
	}

	s.metrics.SubscriptionsStarted.Inc()
	s.deps.Logger.Info("new subscriber pending confirmation", "subscriber_id", id)

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("subscription_token")
	if raw == "" {
		s.handleError(w, r, errorz.InvalidInput{errorz.Keyed{
			Key: "subscription_token",
			Err: errors.New("is required"),
		}})
		return
	}

	id, err := s.deps.Service.Confirm(r.Context(), raw)
	if err != nil {
		s.metrics.SubscriptionFailures.WithLabelValues("confirm").Inc()

		// An unknown token is indistinguishable from a guessed one.
		if errors.Is(err, errorz.ErrNotFound) {
			http.Error(w, "unknown subscription token", http.StatusUnauthorized)
			return
		}

		s.handleError(w, r, err)
		return
	}

	s.metrics.SubscriptionsConfirmed.Inc()
	s.deps.Logger.Info("subscriber confirmed", "subscriber_id", id)

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidInput errorz.InvalidInput
	if errors.As(err, &invalidInput) {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	s.deps.Logger.Error("internal server error", "url", r.URL.String(), "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// decodeError converts schema decode errors to input errors keyed by
// form field.
func decodeError(err error) error {
	if err == nil {
		return nil
	}

	var multiErr schema.MultiError
	if errors.As(err, &multiErr) {
		var invalidInput errorz.InvalidInput
		for key, e := range multiErr {
			invalidInput = append(invalidInput, errorz.Keyed{
				Key: key,
				Err: e,
			})
		}

		return invalidInput
	}

	return err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r)

		s.metrics.HTTPRequests.WithLabelValues(strconv.Itoa(ww.Status())).Inc()
		s.deps.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
