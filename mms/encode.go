package mms

import (
	"bytes"
	"fmt"

	"github.com/psanford/gsmd/sbuf"
)

// encoder writes WSP/MMS primitives at the end of buf.
type encoder struct {
	buf *sbuf.Buffer
}

func newScratch() *encoder {
	return &encoder{buf: sbuf.New()}
}

func (e *encoder) encodeVarUint(v uint32) error {
	var tmp [maxUintvar]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
	}
	return e.buf.Put(tmp[i:])
}

func (e *encoder) encodeValueLength(n uint32) error {
	if n < lengthQuote {
		return e.buf.PutByte(byte(n))
	}
	if err := e.buf.PutByte(lengthQuote); err != nil {
		return err
	}
	return e.encodeVarUint(n)
}

func (e *encoder) encodeShortInt(v uint8) error {
	if v > 0x7f {
		return fmt.Errorf("short int %d: %w", v, ErrInvalidValue)
	}
	return e.buf.PutByte(v | 0x80)
}

func (e *encoder) encodeLongInt(v uint64) error {
	var tmp [9]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte(v)
		v >>= 8
		if v == 0 {
			break
		}
	}
	i--
	tmp[i] = byte(len(tmp) - i - 1)
	return e.buf.Put(tmp[i:])
}

func (e *encoder) encodeInteger(v uint64) error {
	if v <= 0x7f {
		return e.encodeShortInt(uint8(v))
	}
	return e.encodeLongInt(v)
}

func (e *encoder) encodeText(b []byte) error {
	if bytes.IndexByte(b, 0) >= 0 {
		return fmt.Errorf("text %q contains a NUL: %w", b, ErrInvalidValue)
	}
	// the decoder drops one leading quote of either kind, so quote anything
	// that would be mistaken for one, or for a Value-length
	if len(b) > 0 && (b[0] < 0x20 || b[0] >= 0x80 || b[0] == quote || b[0] == quotedText) {
		if err := e.buf.PutByte(quote); err != nil {
			return err
		}
	}
	if err := e.buf.Put(b); err != nil {
		return err
	}
	return e.buf.PutByte(0)
}

// encodeBlock writes the output of f prefixed with its Value-length.
func (e *encoder) encodeBlock(f func(*encoder) error) error {
	scratch := newScratch()
	if err := f(scratch); err != nil {
		return err
	}
	if err := e.encodeValueLength(uint32(scratch.buf.Len())); err != nil {
		return err
	}
	return e.buf.Put(scratch.buf.Bytes())
}

func (e *encoder) encodeEncodedString(es EncodedString) error {
	if es.Charset == CharsetASCII {
		return e.encodeText(es.Text.Bytes())
	}
	return e.encodeBlock(func(s *encoder) error {
		if err := s.encodeInteger(uint64(es.Charset)); err != nil {
			return err
		}
		switch es.Charset {
		case CharsetUTF8, CharsetAny:
			return s.encodeText(es.Text.Bytes())
		}
		return s.encodeRaw(es.Text.Bytes())
	})
}

// encodeRaw writes text in a charset the codec does not interpret. It may
// hold NULs; the enclosing Value-length delimits it.
func (e *encoder) encodeRaw(b []byte) error {
	if len(b) > 0 && b[0] == quote {
		if err := e.buf.PutByte(quote); err != nil {
			return err
		}
	}
	if err := e.buf.Put(b); err != nil {
		return err
	}
	return e.buf.PutByte(0)
}

func (e *encoder) encodeAddress(a Address) error {
	if a.Type == AddressNone {
		return e.encodeEncodedString(a.EncodedString)
	}
	full := make([]byte, 0, a.Text.Len()+len(addressTypeSep)+len(a.Type))
	full = append(full, a.Text.Bytes()...)
	full = append(full, addressTypeSep...)
	full = append(full, a.Type...)
	return e.encodeEncodedString(EncodedString{Charset: a.Charset, Text: Borrow(full)})
}

func (e *encoder) encodeFrom(f FromAddress) error {
	return e.encodeBlock(func(s *encoder) error {
		if f.Insert {
			return s.buf.PutByte(insertAddressToken)
		}
		if err := s.buf.PutByte(addressPresentToken); err != nil {
			return err
		}
		return s.encodeAddress(f.Address)
	})
}

func (e *encoder) encodeExpiry(x Expiry) error {
	return e.encodeBlock(func(s *encoder) error {
		token := byte(relativeToken)
		if x.Absolute {
			token = absoluteToken
		}
		if err := s.buf.PutByte(token); err != nil {
			return err
		}
		return s.encodeLongInt(x.Seconds)
	})
}

func (e *encoder) encodeVersion(v Version) error {
	if v.Major > 7 || v.Minor > 15 {
		return fmt.Errorf("version %d.%d: %w", v.Major, v.Minor, ErrInvalidValue)
	}
	return e.encodeShortInt(v.Major<<4 | v.Minor)
}

func (e *encoder) encodeQValue(q QValue) error {
	if q > 999 {
		return fmt.Errorf("q-value %d: %w", q, ErrInvalidValue)
	}
	if q%10 == 0 {
		return e.encodeVarUint(uint32(q)/10 + 1)
	}
	return e.encodeVarUint(uint32(q) + 100)
}

func (e *encoder) encodeMedia(m Value) error {
	switch v := m.(type) {
	case WellKnownMedia:
		if _, ok := v.Name(); !ok {
			return fmt.Errorf("media 0x%x: %w", uint8(v), ErrLookupFailed)
		}
		return e.encodeShortInt(uint8(v))
	case Text:
		return e.encodeText(v.Bytes())
	case nil:
		return fmt.Errorf("content type without media: %w", ErrRequiredField)
	}
	return fmt.Errorf("media of kind %s: %w", m.Kind(), ErrInvalidValue)
}

func (e *encoder) encodeContentType(ct *ContentType) error {
	if ct == nil {
		return fmt.Errorf("nil content type: %w", ErrRequiredField)
	}
	if len(ct.Params) == 0 {
		return e.encodeMedia(ct.Media)
	}
	return e.encodeBlock(func(s *encoder) error {
		if err := s.encodeMedia(ct.Media); err != nil {
			return err
		}
		return s.encodeParams(ct.Params)
	})
}

func (e *encoder) encodeParams(ps []Parameter) error {
	for _, p := range ps {
		if err := e.encodeParam(p); err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
	}
	return nil
}

func (e *encoder) encodeParam(p Parameter) error {
	if p.Value == nil {
		return fmt.Errorf("parameter without value: %w", ErrRequiredField)
	}
	if p.Typed {
		if p.Code.Info() == nil {
			return fmt.Errorf("parameter 0x%x: %w", uint8(p.Code), ErrLookupFailed)
		}
		if err := e.encodeShortInt(uint8(p.Code)); err != nil {
			return err
		}
		return e.encodeValue(p.Value)
	}
	if err := e.encodeText(p.Token.Bytes()); err != nil {
		return err
	}
	switch p.Value.(type) {
	case ShortInteger, LongInteger, Text:
		return e.encodeValue(p.Value)
	}
	return e.encodeText([]byte(p.Value.String()))
}

func (e *encoder) encodeDisposition(v Disposition) error {
	return e.encodeBlock(func(s *encoder) error {
		switch t := v.Type.(type) {
		case DispositionType:
			if err := s.buf.PutByte(byte(t)); err != nil {
				return err
			}
		case Text:
			if err := s.encodeText(t.Bytes()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("disposition type: %w", ErrInvalidValue)
		}
		return s.encodeParams(v.Params)
	})
}

func (e *encoder) encodeEnum(tbl enumTable, code uint8, what string) error {
	if _, ok := tbl.lookup(code); !ok {
		return fmt.Errorf("%s 0x%x: %w", what, code, ErrInvalidValue)
	}
	return e.buf.PutByte(code)
}

// encodeValue writes v in the wire form of its concrete type.
func (e *encoder) encodeValue(v Value) error {
	switch v := v.(type) {
	case ShortInteger:
		return e.encodeShortInt(uint8(v))
	case LongInteger:
		return e.encodeLongInt(uint64(v))
	case Version:
		return e.encodeVersion(v)
	case Date:
		return e.encodeLongInt(uint64(v))
	case Text:
		return e.encodeText(v.Bytes())
	case EncodedString:
		return e.encodeEncodedString(v)
	case Address:
		return e.encodeAddress(v)
	case FromAddress:
		return e.encodeFrom(v)
	case *ContentType:
		return e.encodeContentType(v)
	case WellKnownMedia:
		return e.encodeMedia(v)
	case Charset:
		return e.encodeInteger(uint64(v))
	case QValue:
		return e.encodeQValue(v)
	case Expiry:
		return e.encodeExpiry(v)
	case Disposition:
		return e.encodeDisposition(v)
	case Opaque:
		return e.buf.Put(v.Bytes())
	case MessageType:
		return e.encodeEnum(messageTypes, uint8(v), "message type")
	case MessageClass:
		return e.encodeEnum(messageClasses, uint8(v), "message class")
	case Priority:
		return e.encodeEnum(priorities, uint8(v), "priority")
	case YesNo:
		return e.encodeEnum(yesNo, uint8(v), "yes/no")
	case Status:
		return e.encodeEnum(statuses, uint8(v), "status")
	case SenderVisibility:
		return e.encodeEnum(senderVisibilities, uint8(v), "sender visibility")
	case ReadStatus:
		return e.encodeEnum(readStatuses, uint8(v), "read status")
	case ResponseStatus:
		if v < 0x80 {
			return fmt.Errorf("response status 0x%x: %w", uint8(v), ErrInvalidValue)
		}
		return e.buf.PutByte(byte(v))
	case nil:
		return fmt.Errorf("nil value: %w", ErrNoCodec)
	}
	return fmt.Errorf("value kind %s: %w", v.Kind(), ErrNoCodec)
}

// fits reports whether v can be written for a field of the given kind.
func fits(kind ValueKind, v Value) bool {
	if _, ok := v.(Opaque); ok {
		return true
	}
	switch kind {
	case KindInteger:
		k := v.Kind()
		return k == KindShortInt || k == KindLongInt
	case KindMessageClass:
		k := v.Kind()
		return k == KindMessageClass || k == KindText
	case KindVersion:
		k := v.Kind()
		return k == KindVersion || k == KindText
	case KindUnsupported:
		return false
	}
	return v.Kind() == kind
}

func (e *encoder) encodeHeader(h Header) error {
	if h.ID.Namespace == 0 {
		// Application-header = Token-text Application-specific-value
		if err := e.encodeText(h.Name.Bytes()); err != nil {
			return err
		}
		if h.Value == nil {
			return fmt.Errorf("header %s: %w", h.Name, ErrNoCodec)
		}
		return e.encodeText([]byte(h.Value.String()))
	}
	fi := h.ID.Info()
	if fi == nil {
		return fmt.Errorf("header %s: %w", h.ID, ErrUnknownField)
	}
	if h.Value == nil {
		return fmt.Errorf("header %s: %w", fi.Name, ErrNoCodec)
	}
	if !fits(fi.Kind, h.Value) {
		return fmt.Errorf("header %s expects %s, have %s: %w", fi.Name, fi.Kind, h.Value.Kind(), ErrInvalidValue)
	}
	if err := e.encodeShortInt(fi.Code); err != nil {
		return err
	}
	if err := e.encodeValue(h.Value); err != nil {
		return fmt.Errorf("header %s: %w", fi.Name, err)
	}
	return nil
}

// WriteUintvar appends v to b as a uintvar.
func WriteUintvar(b *sbuf.Buffer, v uint32) error {
	e := encoder{buf: b}
	return e.encodeVarUint(v)
}

// WriteContentType appends ct to b, using the constrained form when ct has
// no parameters.
func WriteContentType(b *sbuf.Buffer, ct *ContentType) error {
	scratch := newScratch()
	if err := scratch.encodeContentType(ct); err != nil {
		return err
	}
	return b.Put(scratch.buf.Bytes())
}

// WriteWSPHeaders appends hdrs to b. Every header must be in the WSP
// namespace or be an application header.
func WriteWSPHeaders(b *sbuf.Buffer, hdrs Headers) error {
	scratch := newScratch()
	for _, h := range hdrs {
		if h.ID.Namespace == NamespaceMMS {
			return fmt.Errorf("header %s is not a WSP header: %w", h.ID, ErrInvalidValue)
		}
		if err := scratch.encodeHeader(h); err != nil {
			return err
		}
	}
	return b.Put(scratch.buf.Bytes())
}
