package mms

import (
	"fmt"

	"github.com/google/uuid"
)

// PartSpec is one body part of an outgoing message.
type PartSpec struct {
	MediaType string
	Data      []byte

	// optional part headers
	ContentID       string
	ContentLocation string
}

// SendRequest describes an outgoing message as kept by the outbox.
type SendRequest struct {
	To   []string
	From string // empty lets the relay insert the sender

	// ExtraHeaders is a block of Name=Value lines, see ParseHeaders.
	ExtraHeaders string

	Parts []PartSpec

	TransactionID  string // generated when empty
	DeliveryReport bool
}

// ComposeSendRequest builds an m-send-req (MMS 1.2) from req. All payloads
// are copied.
func ComposeSendRequest(req SendRequest) (*Message, error) {
	var msg Message

	txid := req.TransactionID
	if txid == "" {
		txid = uuid.New().String()
	}

	msg.SetMessageType(MSendReq)
	msg.SetTransactionID(txid)
	msg.SetVersion(1, 2)
	if req.DeliveryReport {
		msg.SetDeliveryReport(true)
	}
	msg.SetFrom(req.From)
	for _, to := range req.To {
		msg.AddTo(to)
	}

	if req.ExtraHeaders != "" {
		extra, err := ParseHeaders(req.ExtraHeaders)
		if err != nil {
			return nil, fmt.Errorf("extra headers: %w", err)
		}
		msg.Headers = append(msg.Headers, extra...)
	}

	if _, ok := msg.Headers.Get(FieldTo); !ok {
		return nil, fmt.Errorf("%s: %w", FieldTo, ErrRequiredField)
	}

	for _, ps := range req.Parts {
		p, err := msg.AddPart(ps.MediaType, ps.Data)
		if err != nil {
			return nil, err
		}
		if ps.ContentID != "" {
			p.Headers.Add(WSPContentID, TextOf(ps.ContentID))
		}
		if ps.ContentLocation != "" {
			p.Headers.Add(WSPContentLocation, TextOf(ps.ContentLocation))
		}
	}

	return &msg, nil
}
