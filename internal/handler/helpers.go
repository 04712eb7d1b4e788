package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/chalets-du-lac/api/internal/ws"
)

// Broadcaster publishes snapshot events to live subscribers. Satisfied by
// *ws.Hub; handlers take the interface so tests can observe broadcasts.
type Broadcaster interface {
	Broadcast(topic string, event ws.Event)
}

// broadcastSnapshot marshals a full fresh snapshot and publishes it. A
// marshal failure only loses the push, never the write that preceded it.
func broadcastSnapshot(b Broadcaster, topic, eventType string, payload interface{}) {
	if b == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s snapshot: %v", topic, err)
		return
	}
	b.Broadcast(topic, ws.Event{Type: eventType, Payload: raw})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var errNegativePrice = errors.New("negative price")

// parsePrice parses a decimal price string, rejecting negative amounts.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegativePrice
	}
	return d, nil
}
