package feed

import (
	"encoding/json"

	"github.com/openbid/bidwatch/internal/model"
)

// messageEnvelope is used for fast type extraction.
type messageEnvelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// updateWire is the msg payload of a db_update broadcast.
type updateWire struct {
	ProductName string `json:"product_name"`
	User        string `json:"user"`
	Amount      int64  `json:"amount"`
}

// parseUpdate decodes one broadcast message. ok is false for message
// types other than db_update; those are skipped without error.
func parseUpdate(data []byte) (model.BidUpdate, bool, error) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.BidUpdate{}, false, err
	}

	if envelope.Type != "db_update" {
		return model.BidUpdate{}, false, nil
	}

	var wire updateWire
	if err := json.Unmarshal(envelope.Msg, &wire); err != nil {
		return model.BidUpdate{}, false, err
	}

	return model.BidUpdate{
		Product: wire.ProductName,
		User:    wire.User,
		Amount:  wire.Amount,
	}, true, nil
}
