// Package store persists received messages, sent messages and delivery
// reports.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/psanford/gsmd/mms"
)

var ErrNotFound = errors.New("store: not found")

type Store interface {
	SaveInbox(ctx context.Context, rec *InboxRecord) error
	LoadInbox(ctx context.Context, id string) (*InboxRecord, error)
	SaveOutbox(ctx context.Context, rec *OutboxRecord) error
	LoadOutbox(ctx context.Context, id string) (*OutboxRecord, error)
	// UpdateDeliveryStatus sets the state of the outbox record sent as
	// messageID.
	UpdateDeliveryStatus(ctx context.Context, messageID string, state mms.DeliveryState) error
	AppendReport(ctx context.Context, rep *Report) error
	Reports(ctx context.Context, messageID string) ([]Report, error)
}

// InboxRecord is a received message. It owns all of its data.
type InboxRecord struct {
	ID       string       `msgpack:"id"`
	Received time.Time    `msgpack:"received"`
	From     string       `msgpack:"from"`
	Subject  string       `msgpack:"subject,omitempty"`
	Headers  string       `msgpack:"headers"`
	Parts    []PartRecord `msgpack:"parts"`
}

type PartRecord struct {
	MediaType string `msgpack:"media_type"`
	Filename  string `msgpack:"filename,omitempty"`
	Data      []byte `msgpack:"data"`
}

// OutboxRecord is a message handed to the relay.
type OutboxRecord struct {
	ID         string            `msgpack:"id"`
	MessageID  string            `msgpack:"message_id,omitempty"`
	To         []string          `msgpack:"to"`
	Sent       time.Time         `msgpack:"sent"`
	Response   string            `msgpack:"response,omitempty"`
	State      mms.DeliveryState `msgpack:"state"`
	UpdatedAt  time.Time         `msgpack:"updated_at"`
	SendReport bool              `msgpack:"send_report"`
}

// Report is a delivery report for one recipient.
type Report struct {
	MessageID string            `msgpack:"message_id"`
	To        []string          `msgpack:"to"`
	Status    string            `msgpack:"status"`
	State     mms.DeliveryState `msgpack:"state"`
	Date      time.Time         `msgpack:"date"`
}

// NewInboxRecord copies what the inbox keeps out of msg. The record is
// keyed by the message id, or the transaction id when the relay did not
// assign one.
func NewInboxRecord(msg *mms.Message, received time.Time) *InboxRecord {
	rec := &InboxRecord{
		ID:       msg.MessageID(),
		Received: received.UTC(),
		Headers:  msg.Headers.String(),
	}
	if rec.ID == "" {
		rec.ID = msg.TransactionID()
	}
	if v, ok := msg.Headers.Get(mms.FieldFrom); ok {
		if from, ok := v.(mms.FromAddress); ok && !from.Insert {
			rec.From = sender(from.Address.String())
		}
	}
	if v, ok := msg.Headers.Get(mms.FieldSubject); ok {
		rec.Subject = v.String()
	}
	for i := range msg.Parts {
		p := &msg.Parts[i]
		rec.Parts = append(rec.Parts, PartRecord{
			MediaType: p.ContentType().String(),
			Filename:  p.Filename(),
			Data:      p.Data.Clone().Bytes(),
		})
	}
	return rec
}

// sender drops the /TYPE= suffix of an address.
func sender(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// NewReport reads a delivery report indication.
func NewReport(ind *mms.Indicator) *Report {
	return &Report{
		MessageID: ind.MessageID,
		To:        append([]string(nil), ind.To...),
		Status:    ind.Status.String(),
		State:     ind.DeliveryState(),
		Date:      ind.Date,
	}
}

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode[V any](b []byte) (*V, error) {
	var v V
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
