package mms

import (
	"fmt"
	"time"
)

// Indicator summarizes an m-notification-ind or an m-delivery-ind. All
// fields are copies; an Indicator does not borrow from the PDU buffer.
type Indicator struct {
	Type          MessageType
	TransactionID string

	// m-notification-ind
	ContentLocation string
	From            string
	Subject         string
	Size            uint64
	Class           string
	Expiry          *Expiry

	// m-delivery-ind
	MessageID string
	To        []string
	Date      time.Time
	Status    Status
}

// NewIndicator reads the summary fields of a notification or delivery
// report.
func NewIndicator(msg *Message) (*Indicator, error) {
	mt, ok := msg.MessageType()
	if !ok {
		return nil, fmt.Errorf("%s: %w", FieldMessageType, ErrRequiredField)
	}

	ind := Indicator{
		Type:          mt,
		TransactionID: msg.TransactionID(),
	}

	switch mt {
	case MNotificationInd:
		ind.ContentLocation = msg.Headers.text(FieldContentLocation)
		if ind.ContentLocation == "" {
			return nil, fmt.Errorf("%s: %w", FieldContentLocation, ErrRequiredField)
		}
		if v, ok := msg.Headers.Get(FieldFrom); ok {
			if from, ok := v.(FromAddress); ok && !from.Insert {
				ind.From = from.Address.Number()
			}
		}
		ind.Subject = msg.Headers.text(FieldSubject)
		if v, ok := msg.Headers.Get(FieldMessageSize); ok {
			if n, ok := v.(LongInteger); ok {
				ind.Size = uint64(n)
			}
		}
		ind.Class = msg.Headers.text(FieldMessageClass)
		if v, ok := msg.Headers.Get(FieldExpiry); ok {
			if x, ok := v.(Expiry); ok {
				ind.Expiry = &x
			}
		}
	case MDeliveryInd:
		ind.MessageID = msg.MessageID()
		for _, v := range msg.Headers.GetAll(FieldTo) {
			if a, ok := v.(Address); ok {
				ind.To = append(ind.To, a.Number())
			}
		}
		if v, ok := msg.Headers.Get(FieldDate); ok {
			if d, ok := v.(Date); ok {
				ind.Date = d.Time()
			}
		}
		v, ok := msg.Headers.Get(FieldStatus)
		if !ok {
			return nil, fmt.Errorf("%s: %w", FieldStatus, ErrRequiredField)
		}
		st, ok := v.(Status)
		if !ok {
			return nil, fmt.Errorf("%s of kind %s: %w", FieldStatus, v.Kind(), ErrInvalidValue)
		}
		ind.Status = st
	default:
		return nil, fmt.Errorf("message type %s is not an indication: %w", mt, ErrInvalidValue)
	}

	return &ind, nil
}

// DeliveryState maps the report status for the outbox.
func (ind *Indicator) DeliveryState() DeliveryState {
	return ind.Status.DeliveryState()
}
