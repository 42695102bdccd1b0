// Package mms encodes and decodes MMS PDUs (WAP-209 MMS encapsulation on
// top of the WSP header encoding).
//
// Decoded messages borrow from the input buffer rather than copying text
// and part payloads. Call Message.Detach before releasing or reusing the
// buffer.
package mms

import (
	"fmt"

	"github.com/psanford/gsmd/sbuf"
)

// PDUContentType is the HTTP content type of an encoded PDU.
const PDUContentType = "application/vnd.wap.mms-message"

// Unmarshal decodes packet. The message borrows from packet.
func Unmarshal(packet []byte) (*Message, error) {
	return Decode(sbuf.FromBytes(packet))
}

// Decode decodes one PDU starting at the cursor of buf. The message
// borrows from buf.
func Decode(buf *sbuf.Buffer) (*Message, error) {
	dec := decoder{buf: buf}

	hdr, ct, err := dec.decodeHeader()
	if err != nil {
		return nil, err
	}

	msg := Message{
		Headers: hdr,
		src:     buf,
	}

	if ct == nil || buf.Remaining() == 0 {
		return &msg, nil
	}

	if !ct.IsMultipart() {
		body, _ := buf.Next(buf.Remaining())
		var p Part
		p.Headers.Add(WSPContentType, ct)
		p.Data = Borrow(body)
		msg.Parts = []Part{p}
		return &msg, nil
	}

	parts, err := dec.decodeBody()
	if err != nil {
		return nil, err
	}
	msg.Parts = parts

	return &msg, nil
}

// WAP-209: section 7.1
//
//	Header = MMS-header | Application-header
//
// Scanning stops after Content-Type, which always precedes the body, or at
// the end of data for PDUs without a body.
func (d *decoder) decodeHeader() (Headers, *ContentType, error) {
	var hdr Headers

	for d.buf.Remaining() > 0 {
		b, _ := d.peek()
		if b&0x80 != 0x80 {
			return nil, nil, fmt.Errorf("invalid short int at pos:%d, value: 0x%x: %w", d.pos(), b, ErrInvalidData)
		}
		d.buf.NextByte()

		id, fi, ok := LookupField(b & 0x7f)
		if !ok {
			return nil, nil, fmt.Errorf("unknown mms field type 0x%x at pos:%d: %w", b&0x7f, d.pos()-1, ErrUnknownField)
		}

		v, err := d.decodeFieldValue(fi)
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", fi.Name, err)
		}
		hdr.Add(id, v)

		if id == FieldContentType.ID() {
			return hdr, v.(*ContentType), nil
		}
	}

	return hdr, nil, nil
}

func (d *decoder) decodeBody() ([]Part, error) {
	entries, err := d.decodeVarUint()
	if err != nil {
		return nil, fmt.Errorf("part count: %w", err)
	}
	// every part needs at least its two length octets
	if int64(entries)*2 > int64(d.buf.Remaining()) {
		return nil, fmt.Errorf("%d parts in %d bytes: %w", entries, d.buf.Remaining(), ErrBadLength)
	}

	parts := make([]Part, 0, entries)
	for i := 0; i < int(entries); i++ {
		part, err := d.decodePart()
		if err != nil {
			return nil, fmt.Errorf("mime part %d: %w", i, err)
		}
		parts = append(parts, part)
	}

	return parts, nil
}

func (d *decoder) decodePart() (Part, error) {
	headerLen, err := d.decodeVarUint()
	if err != nil {
		return Part{}, err
	}
	dataLen, err := d.decodeVarUint()
	if err != nil {
		return Part{}, err
	}

	mark := d.pos()
	if int64(headerLen) > int64(d.buf.Remaining()) {
		return Part{}, fmt.Errorf("header length %d at pos:%d exceeds data: %w", headerLen, mark, ErrBadLength)
	}
	end := mark + int(headerLen)

	ct, err := d.decodeContentTypeValue()
	if err != nil {
		return Part{}, fmt.Errorf("decode content type for mime part err: %w", err)
	}
	if d.pos() > end {
		return Part{}, fmt.Errorf("content type overran part headers by %d at pos:%d: %w", d.pos()-end, mark, ErrBadLength)
	}

	var part Part
	part.Headers.Add(WSPContentType, ct)

	// The rest of the headers block is kept verbatim. The declared length
	// is authoritative, so the cursor is resynced to the end of the block
	// whatever the content type parse consumed.
	var extra []byte
	if end > d.pos() {
		extra, err = d.buf.Next(end - d.pos())
		if err != nil {
			return Part{}, err
		}
	}
	if len(extra) > 0 {
		part.ExtraHeaders = Borrow(extra)
	}
	if err := d.seekTo(end); err != nil {
		return Part{}, err
	}

	body, err := d.buf.Next(int(dataLen))
	if err != nil {
		return Part{}, fmt.Errorf("read mime part body err: %w", err)
	}
	part.Data = Borrow(body)

	return part, nil
}
