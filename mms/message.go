package mms

import (
	"fmt"

	"github.com/psanford/gsmd/sbuf"
)

// Field is anything that names a header field: FieldID, MMSField or
// WSPField.
type Field interface {
	ID() FieldID
}

func (id FieldID) ID() FieldID { return id }

// Header is one header entry. Application headers (sent by name on the
// wire) have a zero ID and carry their Name.
type Header struct {
	ID    FieldID
	Name  Data
	Value Value
}

// FieldName returns the table name for well-known headers and the
// literal name for application headers.
func (h Header) FieldName() string {
	if h.ID.Namespace == 0 {
		return h.Name.String()
	}
	return h.ID.String()
}

// Headers keeps headers in insertion order. Lookups return the last match.
type Headers []Header

func (h Headers) Len() int { return len(h) }

func (h Headers) index(id FieldID) int {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].ID == id {
			return i
		}
	}
	return -1
}

func (h Headers) Get(f Field) (Value, bool) {
	i := h.index(f.ID())
	if i < 0 {
		return nil, false
	}
	return h[i].Value, true
}

func (h Headers) GetAll(f Field) []Value {
	id := f.ID()
	var out []Value
	for _, hdr := range h {
		if hdr.ID == id {
			out = append(out, hdr.Value)
		}
	}
	return out
}

func (h *Headers) Add(f Field, v Value) {
	*h = append(*h, Header{ID: f.ID(), Value: v})
}

// Set replaces the last header for f, or appends one.
func (h *Headers) Set(f Field, v Value) {
	if i := h.index(f.ID()); i >= 0 {
		(*h)[i].Value = v
		return
	}
	h.Add(f, v)
}

// Take removes the last header for f and returns its value.
func (h *Headers) Take(f Field) (Value, bool) {
	i := h.index(f.ID())
	if i < 0 {
		return nil, false
	}
	v := (*h)[i].Value
	*h = append((*h)[:i], (*h)[i+1:]...)
	return v, true
}

// Del removes every header for f.
func (h *Headers) Del(f Field) {
	id := f.ID()
	out := (*h)[:0]
	for _, hdr := range *h {
		if hdr.ID != id {
			out = append(out, hdr)
		}
	}
	*h = out
}

// Clone returns a copy of the slice. Values are shared.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	copy(out, h)
	return out
}

func (h Headers) borrowed() bool {
	for _, hdr := range h {
		if hdr.Name.Borrowed() || (hdr.Value != nil && hdr.Value.borrowed()) {
			return true
		}
	}
	return false
}

func (h Headers) detach() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	for i, hdr := range h {
		out[i] = Header{ID: hdr.ID, Name: hdr.Name.detach()}
		if hdr.Value != nil {
			out[i].Value = hdr.Value.detach()
		}
	}
	return out
}

func (h Headers) text(f Field) string {
	v, ok := h.Get(f)
	if !ok {
		return ""
	}
	return v.String()
}

// Part is one entry of a multipart body.
type Part struct {
	Headers Headers
	Data    Data

	// ExtraHeaders holds the part headers that follow Content-Type,
	// undecoded. See DecodeExtraHeaders.
	ExtraHeaders Data
}

// ContentType returns the part's content type, or nil.
func (p *Part) ContentType() *ContentType {
	v, ok := p.Headers.Get(WSPContentType)
	if !ok {
		return nil
	}
	ct, _ := v.(*ContentType)
	return ct
}

// DecodeExtraHeaders parses ExtraHeaders as WSP headers. The result
// borrows from ExtraHeaders.
func (p *Part) DecodeExtraHeaders() (Headers, error) {
	if p.ExtraHeaders.Len() == 0 {
		return nil, nil
	}
	return ReadWSPHeaders(sbuf.FromBytes(p.ExtraHeaders.Bytes()), p.ExtraHeaders.Len())
}

// Filename picks a file name for the part from the content type name
// parameter, the disposition filename or the content location.
func (p *Part) Filename() string {
	if ct := p.ContentType(); ct != nil {
		for _, name := range []string{"name", "filename"} {
			if v, ok := ct.Param(name); ok && v.String() != "" {
				return v.String()
			}
		}
	}
	hdrs := p.Headers
	if extra, err := p.DecodeExtraHeaders(); err == nil {
		hdrs = append(hdrs.Clone(), extra...)
	}
	for _, id := range []WSPField{WSPContentDisposition, WSPContentDisposition14} {
		if v, ok := hdrs.Get(id); ok {
			if d, ok := v.(Disposition); ok && d.Filename() != "" {
				return d.Filename()
			}
		}
	}
	return hdrs.text(WSPContentLocation)
}

func (p *Part) borrowed() bool {
	return p.Headers.borrowed() || p.Data.Borrowed() || p.ExtraHeaders.Borrowed()
}

func (p *Part) detach() Part {
	return Part{
		Headers:      p.Headers.detach(),
		Data:         p.Data.detach(),
		ExtraHeaders: p.ExtraHeaders.detach(),
	}
}

// Message is a decoded or composed MMS PDU. A decoded message borrows
// from the buffer it was decoded from until Detach is called.
type Message struct {
	Headers Headers
	Parts   []Part

	src *sbuf.Buffer
}

// Borrowed reports whether any payload still references the source
// buffer.
func (m *Message) Borrowed() bool {
	if m.Headers.borrowed() {
		return true
	}
	for i := range m.Parts {
		if m.Parts[i].borrowed() {
			return true
		}
	}
	return false
}

// Detach copies every borrowed payload so the source buffer may be
// released.
func (m *Message) Detach() {
	m.Headers = m.Headers.detach()
	for i := range m.Parts {
		m.Parts[i] = m.Parts[i].detach()
	}
	m.src = nil
}

// Validate reports ErrSourceReleased if the buffer the message was decoded
// from has been released while the message still borrows from it.
func (m *Message) Validate() error {
	if m.src != nil && m.src.Released() && m.Borrowed() {
		return ErrSourceReleased
	}
	return nil
}

func (m *Message) SetMessageType(t MessageType) { m.Headers.Set(FieldMessageType, t) }

func (m *Message) SetTransactionID(id string) { m.Headers.Set(FieldTransactionID, TextOf(id)) }

func (m *Message) SetVersion(major, minor uint8) {
	m.Headers.Set(FieldMMSVersion, Version{Major: major, Minor: minor})
}

func (m *Message) SetDeliveryReport(on bool) { m.Headers.Set(FieldDeliveryReport, YesNoOf(on)) }

// SetFrom sets the sender. An empty address asks the relay to insert it.
func (m *Message) SetFrom(addr string) {
	if addr == "" {
		m.Headers.Set(FieldFrom, FromAddress{Insert: true})
		return
	}
	m.Headers.Set(FieldFrom, FromAddress{Address: ParseAddress(addr)})
}

func (m *Message) AddTo(addr string) { m.Headers.Add(FieldTo, ParseAddress(addr)) }

func (m *Message) SetSubject(s string) { m.Headers.Set(FieldSubject, NewEncodedString(s)) }

func (m *Message) SetContentType(ct *ContentType) { m.Headers.Set(FieldContentType, ct) }

// AddPart appends a part with an owned copy of data. The returned pointer
// is valid until the next AddPart.
func (m *Message) AddPart(mediaType string, data []byte) (*Part, error) {
	ct, err := ParseMediaType(mediaType)
	if err != nil {
		return nil, fmt.Errorf("part %d: %w", len(m.Parts), err)
	}
	var p Part
	p.Headers.Add(WSPContentType, ct)
	p.Data = Own(data)
	m.Parts = append(m.Parts, p)
	return &m.Parts[len(m.Parts)-1], nil
}

func (m *Message) MessageType() (MessageType, bool) {
	v, ok := m.Headers.Get(FieldMessageType)
	if !ok {
		return 0, false
	}
	t, ok := v.(MessageType)
	return t, ok
}

func (m *Message) TransactionID() string { return m.Headers.text(FieldTransactionID) }

func (m *Message) MessageID() string { return m.Headers.text(FieldMessageID) }

func (m *Message) ContentType() *ContentType {
	v, ok := m.Headers.Get(FieldContentType)
	if !ok {
		return nil
	}
	ct, _ := v.(*ContentType)
	return ct
}
