package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/openbid/bidwatch/internal/api"
	"github.com/openbid/bidwatch/internal/model"
	"github.com/openbid/bidwatch/internal/notify"
)

// Outcome classifies a submission attempt.
type Outcome int

const (
	// OutcomeAccepted means the server created the bid.
	OutcomeAccepted Outcome = iota + 1
	// OutcomeInvalid means local validation failed; nothing was sent.
	OutcomeInvalid
	// OutcomeRejected means the server reported a non-success status.
	OutcomeRejected
	// OutcomeError means the request failed in transit.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Alert texts handed to the notification sink, one per outcome.
const (
	msgValidation = "Please fill in all fields to place your bet."
	msgAccepted   = "Bet placed successfully!"
	msgRejected   = "Failed to place bet. Try again."
	msgError      = "An error occurred. Please try again."
)

// Submit places a bet on the currently selected product. Validation
// failures issue no network call. A created bet resets the form
// (username cleared, stake back to the default) and triggers one fresh
// snapshot load under the usual supersession rule. Failed submissions
// are never retried here; the user re-issues the action.
func (e *Engine) Submit(ctx context.Context, username string, amount int64) Outcome {
	e.mu.Lock()
	product := e.selection
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return OutcomeError
	}

	if product == "" || strings.TrimSpace(username) == "" || amount <= 0 {
		e.sink.Notify(notify.Alert{Text: msgValidation, Severity: notify.SeverityError})
		return OutcomeInvalid
	}

	bid, err := e.placer.PlaceBet(ctx, model.BetRequest{
		Username: username,
		Product:  product,
		Amount:   amount,
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			e.logger.Info("bet rejected",
				"product", product,
				"status", apiErr.StatusCode,
			)
			e.sink.Notify(notify.Alert{Text: msgRejected, Severity: notify.SeverityError})
			return OutcomeRejected
		}

		e.logger.Warn("bet submission failed", "product", product, "error", err)
		e.sink.Notify(notify.Alert{Text: msgError, Severity: notify.SeverityError})
		return OutcomeError
	}

	e.logger.Info("bet accepted",
		"product", bid.Product,
		"user", bid.User,
		"amount", bid.Amount,
		"bid_id", bid.ID,
	)
	e.sink.Notify(notify.Alert{Text: msgAccepted, Severity: notify.SeveritySuccess})

	e.mu.Lock()
	e.username = ""
	e.stake = e.cfg.DefaultStake
	// Refresh from the authority; the push channel may deliver the same
	// bid too, but the pull result is the one we trust post-submit. If
	// the selection moved on meanwhile the refresh would be discarded
	// anyway, so skip it.
	if !e.closed && e.selection == product {
		e.gen++
		e.loadLocked(product)
	}
	e.mu.Unlock()

	return OutcomeAccepted
}

// SetUsername records the form's username field.
func (e *Engine) SetUsername(username string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.username = username
}

// SetStake records the form's stake field.
func (e *Engine) SetStake(amount int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stake = amount
}

// Form returns the current form fields.
func (e *Engine) Form() (username string, stake int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.username, e.stake
}
