package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveToolCall(t *testing.T) {
	before := testutil.ToFloat64(toolCallsTotal.WithLabelValues("export_json", "failed"))
	ObserveToolCall("export_json", false, 10*time.Millisecond)
	after := testutil.ToFloat64(toolCallsTotal.WithLabelValues("export_json", "failed"))
	if after != before+1 {
		t.Errorf("expected failed counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestObservePublish(t *testing.T) {
	before := testutil.ToFloat64(publishTotal.WithLabelValues(PublishIncomplete))
	ObservePublish(PublishIncomplete, time.Second)
	if got := testutil.ToFloat64(publishTotal.WithLabelValues(PublishIncomplete)); got != before+1 {
		t.Errorf("expected incomplete counter %v, got %v", before+1, got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 502: "5xx"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %q, want %q", code, got, want)
		}
	}
}
