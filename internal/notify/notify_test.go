package notify

import "testing"

func TestFuncSink(t *testing.T) {
	var got Alert
	sink := Func(func(a Alert) { got = a })

	sink.Notify(Alert{Text: "Bet placed successfully!", Severity: SeveritySuccess})

	if got.Text != "Bet placed successfully!" {
		t.Errorf("Text = %q, want %q", got.Text, "Bet placed successfully!")
	}
	if got.Severity != SeveritySuccess {
		t.Errorf("Severity = %q, want %q", got.Severity, SeveritySuccess)
	}
}

func TestLogSinkNilLogger(t *testing.T) {
	// Must not panic with the zero value.
	LogSink{}.Notify(Alert{Text: "x", Severity: SeverityError})
}
