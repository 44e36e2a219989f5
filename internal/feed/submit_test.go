package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openbid/bidwatch/internal/api"
	"github.com/openbid/bidwatch/internal/model"
	"github.com/openbid/bidwatch/internal/notify"
)

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		selec    string
		username string
		amount   int64
	}{
		{"no selection", "", "alice", 100},
		{"empty username", "Widget", "", 100},
		{"whitespace username", "Widget", "   ", 100},
		{"zero amount", "Widget", "alice", 0},
		{"negative amount", "Widget", "alice", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t)
			if tt.selec != "" {
				f.engine.Select(tt.selec)
				waitForView(t, f.engine, func(v model.BidView) bool { return v.Empty() })
			}

			outcome := f.engine.Submit(context.Background(), tt.username, tt.amount)

			if outcome != OutcomeInvalid {
				t.Errorf("outcome = %v, want invalid", outcome)
			}
			if got := f.placer.callCount(); got != 0 {
				t.Errorf("network calls = %d, want 0", got)
			}
			if got := f.alerts.count(); got != 1 {
				t.Fatalf("alerts = %d, want exactly 1", got)
			}
			if a := f.alerts.last(); a.Severity != notify.SeverityError {
				t.Errorf("alert severity = %q, want error", a.Severity)
			}
		})
	}
}

func TestSubmitAccepted(t *testing.T) {
	f := newEngineFixture(t)
	f.source.set("Widget", model.BidSnapshot{Product: "Widget", User: "bob", Amount: 75})

	f.engine.Select("Widget")
	waitForView(t, f.engine, func(v model.BidView) bool { return !v.Empty() })
	loadsBefore := f.source.callCount("Widget")

	f.engine.SetUsername("alice")
	f.engine.SetStake(100)

	// The authority now reports alice as the highest bidder.
	f.source.set("Widget", model.BidSnapshot{Product: "Widget", User: "alice", Amount: 100})

	outcome := f.engine.Submit(context.Background(), "alice", 100)
	if outcome != OutcomeAccepted {
		t.Fatalf("outcome = %v, want accepted", outcome)
	}

	if got := f.alerts.count(); got != 1 {
		t.Fatalf("alerts = %d, want exactly 1", got)
	}
	if a := f.alerts.last(); a.Severity != notify.SeveritySuccess {
		t.Errorf("alert severity = %q, want success", a.Severity)
	}

	// Form reset: username cleared, stake back to the default.
	username, stake := f.engine.Form()
	if username != "" {
		t.Errorf("username = %q, want empty after success", username)
	}
	if stake != DefaultConfig().DefaultStake {
		t.Errorf("stake = %d, want %d", stake, DefaultConfig().DefaultStake)
	}

	// Exactly one fresh snapshot load for the product.
	waitForView(t, f.engine, func(v model.BidView) bool { return v.User == "alice" })
	if got := f.source.callCount("Widget") - loadsBefore; got != 1 {
		t.Errorf("post-submit loads = %d, want 1", got)
	}
}

func TestSubmitRejected(t *testing.T) {
	f := newEngineFixture(t)
	f.source.set("Widget", model.BidSnapshot{Product: "Widget", User: "bob", Amount: 75})
	f.placer.err = &api.APIError{StatusCode: 409, Message: "bet too low"}

	f.engine.Select("Widget")
	waitForView(t, f.engine, func(v model.BidView) bool { return !v.Empty() })
	loadsBefore := f.source.callCount("Widget")

	f.engine.SetUsername("alice")
	outcome := f.engine.Submit(context.Background(), "alice", 10)

	if outcome != OutcomeRejected {
		t.Errorf("outcome = %v, want rejected", outcome)
	}
	if a := f.alerts.last(); a.Severity != notify.SeverityError {
		t.Errorf("alert severity = %q, want error", a.Severity)
	}

	// No state changes besides the alert: form intact, no refresh.
	username, _ := f.engine.Form()
	if username != "alice" {
		t.Errorf("username = %q, want alice (no reset on rejection)", username)
	}
	time.Sleep(20 * time.Millisecond)
	if got := f.source.callCount("Widget") - loadsBefore; got != 0 {
		t.Errorf("post-rejection loads = %d, want 0", got)
	}
	if v := f.engine.View(); v.User != "bob" {
		t.Errorf("view.User = %q, want bob (unchanged)", v.User)
	}
}

func TestSubmitTransportError(t *testing.T) {
	f := newEngineFixture(t)
	f.placer.err = errors.New("connection reset")

	f.engine.Select("Widget")
	waitForView(t, f.engine, func(v model.BidView) bool { return v.Empty() })

	outcome := f.engine.Submit(context.Background(), "alice", 100)

	if outcome != OutcomeError {
		t.Errorf("outcome = %v, want error", outcome)
	}
	if got := f.placer.callCount(); got != 1 {
		t.Errorf("network calls = %d, want exactly 1 (no retry)", got)
	}
	if a := f.alerts.last(); a.Severity != notify.SeverityError {
		t.Errorf("alert severity = %q, want error", a.Severity)
	}
}

func TestSubmitSkipsRefreshWhenSelectionMoved(t *testing.T) {
	f := newEngineFixture(t)
	f.source.set("Widget", model.BidSnapshot{Product: "Widget", User: "bob", Amount: 75})
	f.source.set("Gadget", model.BidSnapshot{Product: "Gadget", User: "carol", Amount: 30})

	f.engine.Select("Widget")
	waitForView(t, f.engine, func(v model.BidView) bool { return v.Product == "Widget" })
	widgetLoads := f.source.callCount("Widget")

	// The selection moves on while the bet is in flight.
	f.placer.hook = func() { f.engine.Select("Gadget") }

	outcome := f.engine.Submit(context.Background(), "alice", 200)
	if outcome != OutcomeAccepted {
		t.Fatalf("outcome = %v, want accepted", outcome)
	}

	time.Sleep(20 * time.Millisecond)
	if got := f.source.callCount("Widget") - widgetLoads; got != 0 {
		t.Errorf("refresh loads for Widget = %d, want 0 (selection moved on)", got)
	}
	if v := f.engine.View(); v.Product == "Widget" {
		t.Errorf("view = %+v, want Gadget scope", v)
	}
}
