// Package dashboard serves the interactive purchase order and transfer
// analysis as a JSON API.
//
// Every request re-filters the cached datasets; the filter state is the
// date window followed by the currency selected within it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/metrics"
	"arsat/finanzas/internal/parsererror"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Problem represents an RFC 7807 problem details object
type Problem struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Trace      string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// Handler serves the dashboard API.
type Handler struct {
	loader   *Loader
	validate *validator.Validate
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   logging.Logger
}

// NewHandler creates a Handler. A nil gatherer exposes the default registry.
func NewHandler(loader *Loader, m *metrics.Metrics, gatherer prometheus.Gatherer, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		loader:   loader,
		validate: newValidator(),
		metrics:  m,
		gatherer: gatherer,
		logger:   logger.WithField(logging.FieldOperation, "dashboard"),
	}
}

// Routes returns the dashboard router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/purchase-orders/currencies", h.currencies)
		r.Get("/purchase-orders", h.purchaseOrders)
		r.Get("/transfers", h.transfers)
		r.Get("/correlation", h.correlation)
	})
	return r
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		h.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		h.logger.Debug("Request completed",
			logging.F("method", r.Method),
			logging.F("route", route),
			logging.F(logging.FieldStatus, status),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *Handler) currencies(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateQuery(h.validate, r.URL.Query())
	if err != nil {
		h.problem(w, r, err)
		return
	}
	ds, err := h.loader.PurchaseOrders(r.Context())
	if err != nil {
		h.problem(w, r, fmt.Errorf("purchase orders: %w", err))
		return
	}
	render.JSON(w, r, CurrenciesView{
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
		Currencies: nonNil(CurrenciesIn(ds.Table, dr)),
	})
}

func (h *Handler) purchaseOrders(w http.ResponseWriter, r *http.Request) {
	q, dr, err := parsePurchaseOrderQuery(h.validate, r.URL.Query())
	if err != nil {
		h.problem(w, r, err)
		return
	}
	ds, err := h.loader.PurchaseOrders(r.Context())
	if err != nil {
		h.problem(w, r, fmt.Errorf("purchase orders: %w", err))
		return
	}
	currency, err := resolveCurrency(q.Currency, CurrenciesIn(ds.Table, dr))
	if err != nil {
		h.problem(w, r, err)
		return
	}
	render.JSON(w, r, BuildPurchaseOrderView(ds.Table, dr, currency, q.Top))
}

func (h *Handler) transfers(w http.ResponseWriter, r *http.Request) {
	dr, err := parseDateQuery(h.validate, r.URL.Query())
	if err != nil {
		h.problem(w, r, err)
		return
	}
	ds, err := h.loader.Transfers(r.Context())
	if err != nil {
		h.problem(w, r, fmt.Errorf("transfers: %w", err))
		return
	}
	render.JSON(w, r, BuildTransferView(ds.Table, dr))
}

func (h *Handler) correlation(w http.ResponseWriter, r *http.Request) {
	po, err := h.loader.PurchaseOrders(r.Context())
	if err != nil {
		h.problem(w, r, fmt.Errorf("purchase orders: %w", err))
		return
	}
	tr, err := h.loader.Transfers(r.Context())
	if err != nil {
		h.problem(w, r, fmt.Errorf("transfers: %w", err))
		return
	}
	render.JSON(w, r, BuildCorrelationView(po.Table, tr.Table))
}

// problem maps an error to its RFC 7807 response.
func (h *Handler) problem(w http.ResponseWriter, r *http.Request, err error) {
	p := Problem{Trace: middleware.GetReqID(r.Context()), Detail: err.Error()}

	var qerr *QueryError
	var unreadable *parsererror.FileUnreadableError
	var mismatch *parsererror.SchemaMismatchError
	switch {
	case errors.As(err, &qerr):
		p.Type, p.Title, p.Status = "/errors/invalid-filter", "Invalid Filter", http.StatusBadRequest
		p.Detail, p.Field, p.Suggestion = qerr.Message, qerr.Field, qerr.Suggestion
	case errors.As(err, &unreadable), errors.As(err, &mismatch):
		p.Type, p.Title, p.Status = "/errors/dataset-unavailable", "Dataset Unavailable", http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.Type, p.Title, p.Status = "/errors/canceled", "Request Canceled", http.StatusServiceUnavailable
	default:
		p.Type, p.Title, p.Status = "/errors/internal", "Internal Server Error", http.StatusInternalServerError
	}

	entry := h.logger.WithError(err).WithField(logging.FieldStatus, p.Status)
	if p.Status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}
	_ = render.Render(w, r, p)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
