package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.TicksProcessed.Add(3)
	r.BatteryBalance.Set(42.5)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "pohwd_ticks_processed_total 3") {
		t.Fatalf("expected ticks counter in output, got:\n%s", body)
	}
	if !strings.Contains(body, "pohwd_battery_balance_credit_seconds 42.5") {
		t.Fatalf("expected battery gauge in output, got:\n%s", body)
	}
}
