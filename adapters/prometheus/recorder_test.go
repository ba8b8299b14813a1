package prometheus

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
)

func gatherFamily(t *testing.T, r *Recorder, name string) map[string]float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		out := map[string]float64{}
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			key := strings.Join(labels, ",")
			if counter := metric.GetCounter(); counter != nil {
				out[key] = counter.GetValue()
			}
			if histogram := metric.GetHistogram(); histogram != nil {
				out[key] = float64(histogram.GetSampleCount())
			}
		}
		return out
	}
	return nil
}

func TestRecorderCountsWithNormalizedNames(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder()

	recorder.IncCounter(ctx, "notifier.webhook.received", 1, nil)
	recorder.IncCounter(ctx, "notifier.webhook.received", 2, nil)

	values := gatherFamily(t, recorder, "notifier_webhook_received")
	if values == nil {
		t.Fatalf("expected the counter family to be registered")
	}
	if values[""] != 3 {
		t.Fatalf("expected counter value 3, got %v", values[""])
	}
}

func TestRecorderPartitionsByLabels(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder()

	recorder.IncCounter(ctx, "notifier.sms.sent", 1, map[string]string{"severity": "critical"})
	recorder.IncCounter(ctx, "notifier.sms.sent", 1, map[string]string{"severity": "warning"})
	recorder.IncCounter(ctx, "notifier.sms.sent", 1, map[string]string{"severity": "critical"})

	values := gatherFamily(t, recorder, "notifier_sms_sent")
	if values["severity=critical"] != 2 {
		t.Fatalf("expected two critical sends, got %v", values["severity=critical"])
	}
	if values["severity=warning"] != 1 {
		t.Fatalf("expected one warning send, got %v", values["severity=warning"])
	}
}

func TestRecorderToleratesLabelDrift(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder()

	recorder.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{"reason": "signature"})
	// Later call with extra and missing labels still records.
	recorder.IncCounter(ctx, "notifier.webhook.rejected", 1, map[string]string{"other": "x"})

	values := gatherFamily(t, recorder, "notifier_webhook_rejected")
	if values["reason=signature"] != 1 {
		t.Fatalf("expected the labeled sample, got %v", values)
	}
	if values["reason="] != 1 {
		t.Fatalf("expected the drifted sample under an empty label, got %v", values)
	}
}

func TestRecorderObservesHistograms(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder()

	recorder.ObserveHistogram(ctx, "notifier.webhook.duration", 0.125, nil)
	recorder.ObserveHistogram(ctx, "notifier.webhook.duration", 0.5, nil)

	values := gatherFamily(t, recorder, "notifier_webhook_duration")
	if values[""] != 2 {
		t.Fatalf("expected two samples, got %v", values[""])
	}
}

func TestRecorderHandlerServesExposition(t *testing.T) {
	recorder := NewRecorder()
	recorder.IncCounter(context.Background(), "notifier.alerts.fired", 1, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	res := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(res, req)

	if res.Code != 200 {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "notifier_alerts_fired") {
		t.Fatalf("expected exposition to include the counter, got %q", res.Body.String())
	}
}
