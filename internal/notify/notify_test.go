package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stitchline/stitchline/internal/models"
)

func TestNotifier_AnnounceFansOut(t *testing.T) {
	ctx := context.Background()
	a := NewMockAdapter()
	b := NewMockAdapter()
	n := NewNotifier(zerolog.Nop(), a, b)
	n.Connect(ctx)

	n.Announce(ctx, Event{Title: "test", Severity: "warning"})

	for _, m := range []*MockAdapter{a, b} {
		sent := m.Sent()
		if len(sent) != 1 {
			t.Fatalf("sent = %d events, want 1", len(sent))
		}
		if sent[0].Color != ColorWarning {
			t.Errorf("color = %q, want severity-derived %q", sent[0].Color, ColorWarning)
		}
	}
}

func TestNotifier_SendFailureDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	bad := NewMockAdapter()
	good := NewMockAdapter()
	n := NewNotifier(zerolog.Nop(), bad, good)
	n.Connect(ctx)
	bad.FailSend(errors.New("boom"))

	n.Announce(ctx, Event{Title: "test"})

	if len(good.Sent()) != 1 {
		t.Errorf("good adapter sent = %d, want 1", len(good.Sent()))
	}
}

func TestNotifier_ConnectDropsFailedAdapter(t *testing.T) {
	ctx := context.Background()
	bad := NewMockAdapter()
	bad.FailConnect(errors.New("no auth"))
	good := NewMockAdapter()
	n := NewNotifier(zerolog.Nop(), bad, good)
	n.Connect(ctx)

	n.Announce(ctx, Event{Title: "test"})

	if len(bad.Sent()) != 0 {
		t.Errorf("bad adapter sent = %d, want 0", len(bad.Sent()))
	}
	if len(good.Sent()) != 1 {
		t.Errorf("good adapter sent = %d, want 1", len(good.Sent()))
	}
}

func TestFormatDowntimeSubmitted(t *testing.T) {
	evt := FormatDowntimeSubmitted(&models.DowntimeRecord{
		ID:        "dt-12345",
		Category:  models.DowntimeMachine,
		Reason:    "needle breakage",
		MachineID: "M-07",
	})
	if evt.Severity != "error" || evt.Color != ColorError {
		t.Errorf("machine downtime severity = %s/%s", evt.Severity, evt.Color)
	}
	if !strings.Contains(evt.Body, "needle breakage") || !strings.Contains(evt.Body, "M-07") {
		t.Errorf("body = %q", evt.Body)
	}

	evt = FormatDowntimeSubmitted(&models.DowntimeRecord{
		ID: "dt-12346", Category: models.DowntimeChangeover,
	})
	if evt.Severity != "info" {
		t.Errorf("changeover severity = %s, want info", evt.Severity)
	}
}

func TestFormatQualitySubmitted(t *testing.T) {
	reject := FormatQualitySubmitted(&models.QualityEvent{
		ID: "qe-1", Kind: models.QualityReject, Reason: "broken stitch", Count: 3,
	})
	if reject.Severity != "error" {
		t.Errorf("reject severity = %s, want error", reject.Severity)
	}
	if !strings.Contains(reject.Title, "3 unit(s)") {
		t.Errorf("title = %q", reject.Title)
	}

	rework := FormatQualitySubmitted(&models.QualityEvent{
		ID: "qe-2", Kind: models.QualityRework, Reason: "loose seam", Count: 1,
	})
	if rework.Severity != "warning" {
		t.Errorf("rework severity = %s, want warning", rework.Severity)
	}
}

func TestSeverityColor(t *testing.T) {
	if got := severityColor("bogus"); got != ColorInfo {
		t.Errorf("unknown severity color = %q, want info fallback", got)
	}
	if got := severityColor("success"); got != ColorSuccess {
		t.Errorf("success color = %q", got)
	}
}
