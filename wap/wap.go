// Package wap unwraps WSP push PDUs, the envelope an MMS notification
// arrives in over SMS.
package wap

import (
	"errors"
	"fmt"

	"github.com/psanford/gsmd/mms"
	"github.com/psanford/gsmd/sbuf"
)

var ErrInvalidPacket = errors.New("invalid push notification wap packet")

// WAP-230 section 8.2.1
const (
	pduTypePush          = 0x06
	pduTypeConfirmedPush = 0x07
)

// AppIDMMS is the X-Wap-Application-Id of the MMS user agent
// (x-wap-application:mms.ua).
const AppIDMMS = 0x04

// Push is a decoded push PDU. ContentType, Headers and Body borrow from the
// packet.
type Push struct {
	TransactionID uint8
	Type          uint8
	ContentType   *mms.ContentType
	Headers       mms.Headers
	Body          []byte
}

// ParsePush decodes a connectionless push:
//
//	TID PDU-type HeadersLen(uintvar) Content-type Headers Data
func ParsePush(packet []byte) (*Push, error) {
	buf := sbuf.FromBytes(packet)

	tid, err := buf.NextByte()
	if err != nil {
		return nil, fmt.Errorf("%w: transaction id: %w", ErrInvalidPacket, err)
	}
	typ, err := buf.NextByte()
	if err != nil {
		return nil, fmt.Errorf("%w: pdu type: %w", ErrInvalidPacket, err)
	}
	if typ != pduTypePush && typ != pduTypeConfirmedPush {
		return nil, fmt.Errorf("%w: pdu type 0x%02x is not a push", ErrInvalidPacket, typ)
	}

	headersLen, err := mms.ReadUintvar(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: headers length: %w", ErrInvalidPacket, err)
	}
	if int64(headersLen) > int64(buf.Remaining()) {
		return nil, fmt.Errorf("%w: headers length %d exceeds packet", ErrInvalidPacket, headersLen)
	}
	start := buf.Offset()
	end := start + int(headersLen)

	ct, err := mms.ReadContentType(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: content type: %w", ErrInvalidPacket, err)
	}
	if buf.Offset() > end {
		return nil, fmt.Errorf("%w: content type overruns headers", ErrInvalidPacket)
	}
	hdrs, err := mms.ReadWSPHeaders(buf, end-buf.Offset())
	if err != nil {
		return nil, fmt.Errorf("%w: headers: %w", ErrInvalidPacket, err)
	}

	body, _ := buf.Next(buf.Remaining())
	return &Push{
		TransactionID: tid,
		Type:          typ,
		ContentType:   ct,
		Headers:       hdrs,
		Body:          body,
	}, nil
}

// IsMMS reports whether the push carries an MMS PDU.
func (p *Push) IsMMS() bool {
	return p.ContentType.MediaName() == mms.PDUContentType
}

// ApplicationID returns the well-known X-Wap-Application-Id, if the push has
// one in its short integer form.
func (p *Push) ApplicationID() (uint8, bool) {
	v, ok := p.Headers.Get(mms.WSPXWapApplicationID)
	if !ok {
		return 0, false
	}
	o, ok := v.(mms.Opaque)
	if !ok || o.Len() != 1 || o.Bytes()[0]&0x80 == 0 {
		return 0, false
	}
	return o.Bytes()[0] & 0x7f, true
}

// IsMMSPush reports whether packet is a push carrying an MMS PDU.
func IsMMSPush(packet []byte) bool {
	p, err := ParsePush(packet)
	return err == nil && p.IsMMS()
}

// UnmarshalPushNotification unwraps a push and decodes the MMS PDU it
// carries. The message borrows from packet.
func UnmarshalPushNotification(packet []byte) (*mms.Message, error) {
	p, err := ParsePush(packet)
	if err != nil {
		return nil, err
	}
	if !p.IsMMS() {
		return nil, fmt.Errorf("%w: content type %s", ErrInvalidPacket, p.ContentType)
	}
	if len(p.Body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPacket)
	}
	return mms.Unmarshal(p.Body)
}

// MarshalPushNotification wraps msg in a push PDU addressed to the MMS
// user agent.
func MarshalPushNotification(tid uint8, msg *mms.Message) ([]byte, error) {
	pdu, err := mms.Marshal(msg)
	if err != nil {
		return nil, err
	}

	media, _ := mms.MediaByName(mms.PDUContentType)
	var hdrs mms.Headers
	hdrs.Add(mms.WSPXWapApplicationID, mms.Opaque{Data: mms.Own([]byte{0x80 | AppIDMMS})})

	block := sbuf.New()
	if err := mms.WriteContentType(block, &mms.ContentType{Media: media}); err != nil {
		return nil, err
	}
	if err := mms.WriteWSPHeaders(block, hdrs); err != nil {
		return nil, err
	}

	out := sbuf.NewWithCapacity(3 + block.Len() + len(pdu))
	out.PutByte(tid)
	out.PutByte(pduTypePush)
	if err := mms.WriteUintvar(out, uint32(block.Len())); err != nil {
		return nil, err
	}
	out.Put(block.Bytes())
	out.Put(pdu)
	return out.Bytes(), nil
}
