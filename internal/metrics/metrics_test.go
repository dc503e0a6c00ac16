package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementCounters(t *testing.T) {
	m := New()

	m.OrderCreated()
	m.OrderCreated()
	m.OrderRejected("insufficient_stock")
	m.StatusTransition("pending", "processing")
	m.NotificationCreated("low_stock")
	m.StockAlert("out_of_stock")
	m.FanoutFailure("inventory")

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("expected 2 orders, got %v", got)
	}
	if got := testutil.ToFloat64(m.orderRejections.WithLabelValues("insufficient_stock")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.statusTransitions.WithLabelValues("pending", "processing")); got != 1 {
		t.Fatalf("expected 1 transition, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("low_stock")); got != 1 {
		t.Fatalf("expected 1 notification, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockAlerts.WithLabelValues("out_of_stock")); got != 1 {
		t.Fatalf("expected 1 alert, got %v", got)
	}
	if got := testutil.ToFloat64(m.fanoutFailures.WithLabelValues("inventory")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.OrderCreated()
	m.OrderRejected("x")
	m.StatusTransition("a", "b")
	m.NotificationCreated("x")
	m.StockAlert("x")
	m.FanoutFailure("x")
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodPost, "/api/orders", http.StatusCreated, 12*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `orderengine_http_requests_total{method="POST",route="/api/orders",status="201"} 1`) {
		t.Fatalf("expected http counter in scrape output, got:\n%s", body)
	}
}
