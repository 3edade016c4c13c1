package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/setting")

	req := httptest.NewRequest(http.MethodGet, "/setting", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `rbac_console_http_requests_total{code="303",route="/setting"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `rbac_console_http_request_duration_seconds_bucket{route="/setting"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveAPICallOutcomes(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveAPICall("role", http.MethodGet, http.StatusOK, nil)
	metrics.ObserveAPICall("role", http.MethodPost, http.StatusForbidden, errors.New("forbidden"))
	metrics.ObserveAPICall("role", http.MethodGet, 0, errors.New("dial tcp: refused"))
	metrics.ObserveAPICall("role", http.MethodGet, 0, context.Canceled)

	body := scrape(t, metrics)
	for _, want := range []string{
		`rbac_console_api_calls_total{method="GET",outcome="ok",resource="role"} 1`,
		`rbac_console_api_calls_total{method="POST",outcome="status_403",resource="role"} 1`,
		`rbac_console_api_calls_total{method="GET",outcome="transport",resource="role"} 1`,
		`rbac_console_api_calls_total{method="GET",outcome="canceled",resource="role"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s, got: %s", want, body)
		}
	}
}

func TestObserveDenial(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveDenial("expired")
	metrics.ObserveDenial("expired")

	body := scrape(t, metrics)
	if !strings.Contains(body, `rbac_console_gate_denials_total{reason="expired"} 2`) {
		t.Fatalf("expected denial counter, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveAPICall("role", http.MethodGet, http.StatusOK, nil)
	metrics.ObserveDenial("route")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
