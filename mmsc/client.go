package mmsc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/psanford/gsmd/internal/logging"
	"github.com/psanford/gsmd/mms"
)

var (
	ErrUnexpectedPDU = errors.New("mmsc: unexpected pdu type")
	ErrRejected      = errors.New("mmsc: request rejected")
	// ErrTransient accompanies ErrRejected when the relay reports a
	// transient failure; the same request may be sent again later.
	ErrTransient = errors.New("mmsc: transient failure")
)

// Bearer brings the packet data link up and down around a transfer. Modems
// that need a separate APN for MMS implement it; nil means always up.
type Bearer interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
}

type Client struct {
	conveyor Conveyor
	bearer   Bearer
	log      *zap.Logger
}

func NewClient(c Conveyor, b Bearer, log *zap.Logger) *Client {
	return &Client{conveyor: c, bearer: b, log: logging.OrNop(log)}
}

// SendResult is the relay's m-send-conf.
type SendResult struct {
	TransactionID string
	Status        mms.ResponseStatus
	StatusText    string
	MessageID     string
}

func (c *Client) withBearer(ctx context.Context, f func() error) error {
	if c.bearer == nil {
		return f()
	}
	if err := c.bearer.Up(ctx); err != nil {
		return fmt.Errorf("bearer up: %w", err)
	}
	err := f()
	if derr := c.bearer.Down(ctx); derr != nil {
		c.log.Warn("bearer down failed", zap.Error(derr))
	}
	return err
}

// Retrieve fetches the message a notification points at. The returned
// message owns its payloads.
func (c *Client) Retrieve(ctx context.Context, ind *mms.Indicator) (*mms.Message, error) {
	if ind.Type != mms.MNotificationInd || ind.ContentLocation == "" {
		return nil, fmt.Errorf("retrieve from %s: %w", ind.Type, ErrUnexpectedPDU)
	}

	var body []byte
	err := c.withBearer(ctx, func() error {
		var err error
		body, err = c.conveyor.Fetch(ctx, ind.ContentLocation)
		return err
	})
	if err != nil {
		return nil, err
	}

	msg, err := mms.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("decode retrieved message: %w", err)
	}
	if mt, _ := msg.MessageType(); mt != mms.MRetrieveConf {
		return nil, fmt.Errorf("retrieve answered with %s: %w", mt, ErrUnexpectedPDU)
	}
	msg.Detach()

	c.log.Info("retrieved",
		zap.String("transaction_id", ind.TransactionID),
		zap.String("message_id", msg.MessageID()),
		zap.Int("parts", len(msg.Parts)),
	)
	return msg, nil
}

// Acknowledge tells the relay the outcome of a notification with an
// m-notifyresp-ind.
func (c *Client) Acknowledge(ctx context.Context, ind *mms.Indicator, status mms.Status) error {
	var msg mms.Message
	msg.SetMessageType(mms.MNotifyrespInd)
	msg.SetTransactionID(ind.TransactionID)
	msg.SetVersion(1, 2)
	msg.Headers.Add(mms.FieldStatus, status)

	pdu, err := mms.Marshal(&msg)
	if err != nil {
		return err
	}
	return c.withBearer(ctx, func() error {
		_, err := c.conveyor.Send(ctx, pdu)
		return err
	})
}

// Send composes req, posts it and decodes the relay's m-send-conf. A
// response status other than Ok is returned as an error wrapping
// ErrRejected along with the result.
func (c *Client) Send(ctx context.Context, req mms.SendRequest) (*SendResult, error) {
	msg, err := mms.ComposeSendRequest(req)
	if err != nil {
		return nil, err
	}
	pdu, err := mms.Marshal(msg)
	if err != nil {
		return nil, err
	}

	var answer []byte
	err = c.withBearer(ctx, func() error {
		var err error
		answer, err = c.conveyor.Send(ctx, pdu)
		return err
	})
	if err != nil {
		return nil, err
	}

	conf, err := mms.Unmarshal(answer)
	if err != nil {
		return nil, fmt.Errorf("decode send confirmation: %w", err)
	}
	res, err := sendResult(conf)
	if err != nil {
		return nil, err
	}
	if res.TransactionID != msg.TransactionID() {
		c.log.Warn("transaction id mismatch",
			zap.String("sent", msg.TransactionID()),
			zap.String("confirmed", res.TransactionID),
		)
	}

	fields := []zap.Field{
		zap.String("transaction_id", res.TransactionID),
		zap.Stringer("status", res.Status),
		zap.String("message_id", res.MessageID),
	}
	if !res.Status.Ok() {
		fields = append(fields, zap.String("text", res.StatusText))
		if res.Status.Transient() {
			c.log.Warn("send deferred by relay", fields...)
			return res, fmt.Errorf("%s %s: %w: %w", res.Status, res.StatusText, ErrRejected, ErrTransient)
		}
		c.log.Error("send rejected", fields...)
		return res, fmt.Errorf("%s %s: %w", res.Status, res.StatusText, ErrRejected)
	}
	c.log.Info("sent", fields...)
	return res, nil
}

func sendResult(conf *mms.Message) (*SendResult, error) {
	if mt, _ := conf.MessageType(); mt != mms.MSendConf {
		return nil, fmt.Errorf("send answered with %s: %w", mt, ErrUnexpectedPDU)
	}
	v, ok := conf.Headers.Get(mms.FieldResponseStatus)
	if !ok {
		return nil, fmt.Errorf("%s: %w", mms.FieldResponseStatus, mms.ErrRequiredField)
	}
	st, ok := v.(mms.ResponseStatus)
	if !ok {
		return nil, fmt.Errorf("%s of kind %s: %w", mms.FieldResponseStatus, v.Kind(), mms.ErrInvalidValue)
	}
	res := &SendResult{
		TransactionID: conf.TransactionID(),
		Status:        st,
		MessageID:     conf.MessageID(),
	}
	if v, ok := conf.Headers.Get(mms.FieldResponseText); ok {
		res.StatusText = v.String()
	}
	return res, nil
}
