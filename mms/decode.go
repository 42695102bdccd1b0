package mms

import (
	"errors"
	"fmt"
	"io"

	"github.com/psanford/gsmd/sbuf"
)

const (
	quote       = 0x7f
	quotedText  = 0x22
	lengthQuote = 31
	maxUintvar  = 5

	absoluteToken = 128
	relativeToken = 129

	addressPresentToken = 128
	insertAddressToken  = 129
)

// decoder reads WSP/MMS primitives at the cursor of buf. Values holding
// bytes borrow windows of buf.
type decoder struct {
	buf *sbuf.Buffer
}

func (d *decoder) pos() int { return d.buf.Offset() }

// reset moves the cursor back to mark after a failed alternative.
func (d *decoder) reset(mark int) {
	d.buf.Seek(int64(mark), io.SeekStart)
}

// window returns the bytes between mark and the cursor.
func (d *decoder) window(mark int) ([]byte, error) {
	n := d.pos() - mark
	d.reset(mark)
	return d.buf.Next(n)
}

func (d *decoder) peek() (byte, error) {
	b, err := d.buf.PeekByte()
	if err != nil {
		return 0, fmt.Errorf("read at pos:%d: %w", d.pos(), err)
	}
	return b, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.buf.NextByte()
	if err != nil {
		return 0, fmt.Errorf("read at pos:%d: %w", d.pos(), err)
	}
	return b, nil
}

func (d *decoder) seekTo(pos int) error {
	if _, err := d.buf.Seek(int64(pos), io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", pos, err)
	}
	return nil
}

// blockEnd reads a Value-length and returns the absolute offset at which
// the block ends.
func (d *decoder) blockEnd() (int, error) {
	l, err := d.decodeValueLength()
	if err != nil {
		return 0, err
	}
	end := d.pos() + int(l)
	if int(l) > d.buf.Remaining() {
		return 0, fmt.Errorf("value length %d at pos:%d exceeds data: %w", l, d.pos(), sbuf.ErrEOS)
	}
	return end, nil
}

// closeBlock checks that a value-length block was not overrun and moves to
// its declared end.
func (d *decoder) closeBlock(end int) error {
	if d.pos() > end {
		return fmt.Errorf("value overran its length by %d at pos:%d: %w", d.pos()-end, end, ErrBadLength)
	}
	return d.seekTo(end)
}

func (d *decoder) decodeVarUint() (uint32, error) {
	// 8.1.2 Variable Length Unsigned Integers
	// Each octet carries 7 bits of the value, most significant first. The
	// continue bit is set on every octet but the last.
	mark := d.pos()
	var result uint32
	for i := 0; i < maxUintvar; i++ {
		b, err := d.readByte()
		if err != nil {
			d.reset(mark)
			return 0, err
		}
		if i == maxUintvar-1 && result>>25 != 0 {
			d.reset(mark)
			return 0, fmt.Errorf("uintvar at pos:%d overflows 32 bits: %w", mark, ErrInvalidData)
		}
		result = result<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return result, nil
		}
	}
	d.reset(mark)
	return 0, fmt.Errorf("uintvar at pos:%d longer than %d octets: %w", mark, maxUintvar, ErrInvalidData)
}

func (d *decoder) decodeValueLength() (uint32, error) {
	// 8.4.2.2 Length
	// Value-length = Short-length | (Length-quote Length)
	// Short-length = <Any octet 0-30>
	// Length-quote = <Octet 31>
	// Length = Uintvar-integer
	mark := d.pos()
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	if b < lengthQuote {
		return uint32(b), nil
	}
	if b == lengthQuote {
		l, err := d.decodeVarUint()
		if err != nil {
			d.reset(mark)
			return 0, err
		}
		return l, nil
	}
	d.reset(mark)
	return 0, fmt.Errorf("invalid value length at pos:%d value 0x%x: %w", mark, b, ErrInvalidData)
}

func (d *decoder) decodeShortInt() (uint8, error) {
	b, err := d.peek()
	if err != nil {
		return 0, err
	}
	if b&0x80 != 0x80 {
		return 0, fmt.Errorf("invalid short int at pos:%d, value: 0x%x: %w", d.pos(), b, ErrInvalidData)
	}
	d.buf.NextByte()
	return b & 0x7f, nil
}

func (d *decoder) decodeLongInt() (uint64, error) {
	// Long-integer = Short-length Multi-octet-integer
	// Multi-octet-integer = 1*30 OCTET
	// ; big-endian
	mark := d.pos()
	shortLen, err := d.readByte()
	if err != nil {
		return 0, err
	}
	if shortLen == 0 || shortLen > 30 {
		d.reset(mark)
		return 0, fmt.Errorf("invalid long int at pos:%d, shortLen: 0x%x: %w", mark, shortLen, ErrBadLength)
	}
	if shortLen > 8 {
		d.reset(mark)
		return 0, fmt.Errorf("long int at pos:%d, byte size: %d: %w", mark, shortLen, ErrUnsupported)
	}
	octets, err := d.buf.Next(int(shortLen))
	if err != nil {
		d.reset(mark)
		return 0, fmt.Errorf("long int at pos:%d: %w", mark, err)
	}
	var u uint64
	for _, b := range octets {
		u = u<<8 | uint64(b)
	}
	return u, nil
}

// Integer-Value = Short-integer | Long-integer
func (d *decoder) decodeInteger() (Value, error) {
	b, err := d.peek()
	if err != nil {
		return nil, err
	}
	if b&0x80 != 0 {
		v, err := d.decodeShortInt()
		return ShortInteger(v), err
	}
	v, err := d.decodeLongInt()
	if err != nil {
		return nil, err
	}
	return LongInteger(v), nil
}

func (d *decoder) decodeTextEnc() (Data, error) {
	// Text-string = [Quote] *TEXT End-of-string
	// ; If the first character in the TEXT is in the range of 128-255, a Quote character must precede it.
	// ; Otherwise the Quote character must be omitted. The Quote is not part of the contents.
	// Quoted-string = <Octet 34> *TEXT End-of-string
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return Data{}, err
	}
	if b == quote || b == quotedText {
		d.buf.NextByte()
	}
	n := d.buf.FindNext(0)
	if n < 0 {
		d.reset(mark)
		return Data{}, fmt.Errorf("unterminated text at pos:%d: %w", mark, sbuf.ErrEOS)
	}
	text, err := d.buf.Next(n)
	if err != nil {
		d.reset(mark)
		return Data{}, err
	}
	d.buf.NextByte()
	return Borrow(text), nil
}

// decodeTokenText reads Token-text, which unlike Text-string must start
// with a printable octet.
func (d *decoder) decodeTokenText() (Data, error) {
	b, err := d.peek()
	if err != nil {
		return Data{}, err
	}
	if b < 32 || b >= quote {
		return Data{}, fmt.Errorf("invalid token text at pos:%d, value: 0x%x: %w", d.pos(), b, ErrInvalidData)
	}
	return d.decodeTextEnc()
}

func (d *decoder) decodeCharset() (Charset, error) {
	// Well-known-charset = Any-charset | Integer-value
	// Any-charset = <Octet 128>
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return 0, err
	}
	if b >= 32 && b < 0x80 {
		name, err := d.decodeTextEnc()
		if err != nil {
			return 0, err
		}
		cs, ok := CharsetByName(name.String())
		if !ok {
			d.reset(mark)
			return 0, fmt.Errorf("charset %q at pos:%d: %w", name, mark, ErrLookupFailed)
		}
		return cs, nil
	}
	v, err := d.decodeInteger()
	if err != nil {
		return 0, err
	}
	var code uint64
	switch n := v.(type) {
	case ShortInteger:
		code = uint64(n)
	case LongInteger:
		code = uint64(n)
	}
	if code > 0xffff {
		d.reset(mark)
		return 0, fmt.Errorf("charset %d at pos:%d: %w", code, mark, ErrInvalidValue)
	}
	return Charset(code), nil
}

func (d *decoder) decodeEncodedString() (EncodedString, error) {
	// 7.2.9. Encoded-string-value
	// Encoded-string-value = Text-string | Value-length Char-set Text-string
	// The Char-set values are registered by IANA as MIBEnum value.
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return EncodedString{}, err
	}
	if b > lengthQuote || b == 0 {
		text, err := d.decodeTextEnc()
		if err != nil {
			return EncodedString{}, err
		}
		return EncodedString{Charset: CharsetASCII, Text: text}, nil
	}

	fail := func(err error) (EncodedString, error) {
		d.reset(mark)
		return EncodedString{}, err
	}

	end, err := d.blockEnd()
	if err != nil {
		return fail(err)
	}
	cs, err := d.decodeCharset()
	if err != nil {
		return fail(err)
	}
	if d.pos() > end {
		return fail(fmt.Errorf("charset overran encoded string at pos:%d: %w", mark, ErrBadLength))
	}

	var text Data
	switch cs {
	case CharsetASCII, CharsetUTF8, CharsetAny:
		if d.pos() == end {
			break
		}
		text, err = d.decodeTextEnc()
		if err != nil {
			return fail(err)
		}
	default:
		raw, err := d.buf.Next(end - d.pos())
		if err != nil {
			return fail(err)
		}
		if len(raw) > 0 && raw[0] == quote {
			raw = raw[1:]
		}
		if len(raw) > 0 && raw[len(raw)-1] == 0 {
			raw = raw[:len(raw)-1]
		}
		text = Borrow(raw)
	}
	if err := d.closeBlock(end); err != nil {
		return fail(err)
	}
	return EncodedString{Charset: cs, Text: text}, nil
}

func splitAddressType(es EncodedString) Address {
	s := es.Text.Bytes()
	for i := len(s) - len(addressTypeSep); i >= 0; i-- {
		if string(s[i:i+len(addressTypeSep)]) == addressTypeSep {
			typ := AddressType(s[i+len(addressTypeSep):])
			es.Text = Data{b: s[:i:i], owned: es.Text.owned}
			return Address{EncodedString: es, Type: typ}
		}
	}
	return Address{EncodedString: es}
}

// Address = Encoded-string-value with an optional /TYPE= suffix
func (d *decoder) decodeAddress() (Address, error) {
	es, err := d.decodeEncodedString()
	if err != nil {
		return Address{}, err
	}
	return splitAddressType(es), nil
}

func (d *decoder) decodeFrom() (FromAddress, error) {
	// From-value = Value-length (Address-present-token Encoded-string-value | Insert-address-token )
	// Address-present-token = <Octet 128>
	// Insert-address-token = <Octet 129>
	mark := d.pos()
	fail := func(err error) (FromAddress, error) {
		d.reset(mark)
		return FromAddress{}, err
	}

	end, err := d.blockEnd()
	if err != nil {
		return fail(err)
	}
	token, err := d.readByte()
	if err != nil {
		return fail(err)
	}

	var from FromAddress
	switch token {
	case addressPresentToken:
		addr, err := d.decodeAddress()
		if err != nil {
			return fail(err)
		}
		from.Address = addr
	case insertAddressToken:
		from.Insert = true
	default:
		return fail(fmt.Errorf("invalid from field token state at pos:%d: 0x%x: %w", mark, token, ErrInvalidData))
	}
	if err := d.closeBlock(end); err != nil {
		return fail(err)
	}
	return from, nil
}

func (d *decoder) decodeDate() (Date, error) {
	i, err := d.decodeLongInt()
	if err != nil {
		return 0, err
	}
	return Date(i), nil
}

func (d *decoder) decodeRelativeOrAbsoluteTime() (Expiry, error) {
	// 7.2.7. Delivery-Time field
	// Delivery-time-value = Value-length (Absolute-token Date-value | Relative-token Delta-seconds-value)
	// Absolute-token = <Octet 128>
	// Relative-token = <Octet 129>
	mark := d.pos()
	fail := func(err error) (Expiry, error) {
		d.reset(mark)
		return Expiry{}, err
	}

	end, err := d.blockEnd()
	if err != nil {
		return fail(err)
	}
	mode, err := d.readByte()
	if err != nil {
		return fail(err)
	}

	var result Expiry
	switch mode {
	case absoluteToken:
		result.Absolute = true
	case relativeToken:
	default:
		return fail(fmt.Errorf("invalid delivery_time mode at pos:%d: 0x%x: %w", mark, mode, ErrInvalidData))
	}

	// Delta-seconds-value is an Integer-value; some relays send a short
	// integer for small delays.
	v, err := d.decodeInteger()
	if err != nil {
		return fail(err)
	}
	switch n := v.(type) {
	case ShortInteger:
		result.Seconds = uint64(n)
	case LongInteger:
		result.Seconds = uint64(n)
	}
	if err := d.closeBlock(end); err != nil {
		return fail(err)
	}
	return result, nil
}

func (d *decoder) decodeVersion() (Version, error) {
	// MMS-version-value = Short-integer
	// The three most significant bits of the Short-integer are interpreted to encode a major version number in the range 1-7,
	// and the four least significant bits contain a minor version number in the range 0-14. If there is only a major version
	// number, this is encoded by placing the value 15 in the four least significant bits [WAPWSP].
	b, err := d.decodeShortInt()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: (b & 0x70) >> 4, Minor: b & 0x0f}, nil
}

func (d *decoder) decodeQValue() (QValue, error) {
	// Q-value = 1*2 OCTET
	// ; q*100+1 for two decimals, q*1000+100 for three, as a uintvar
	mark := d.pos()
	v, err := d.decodeVarUint()
	if err != nil {
		return 0, err
	}
	switch {
	case v >= 1 && v <= 100:
		return QValue((v - 1) * 10), nil
	case v >= 101 && v <= 1099:
		return QValue(v - 100), nil
	}
	d.reset(mark)
	return 0, fmt.Errorf("q-value %d at pos:%d: %w", v, mark, ErrInvalidValue)
}

// Constrained-encoding = Extension-Media | Short-integer
func (d *decoder) decodeConstrainedMedia() (Value, error) {
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return nil, err
	}
	if b&0x80 != 0 {
		code, _ := d.decodeShortInt()
		m := WellKnownMedia(code)
		if _, ok := m.Name(); !ok {
			d.reset(mark)
			return nil, fmt.Errorf("unknown short content type %d at pos:%d: %w", code, mark, ErrLookupFailed)
		}
		return m, nil
	}
	if b < 32 && b != 0 {
		return nil, fmt.Errorf("not a constrained media at pos:%d, value: 0x%x: %w", mark, b, ErrInvalidData)
	}
	// Extension-Media = *TEXT End-of-string
	text, err := d.decodeTextEnc()
	if err != nil {
		return nil, err
	}
	return Text{text}, nil
}

// Media-type = (Well-known-media | Extension-Media) *(Parameter)
// Well-known-media = Integer-value
func (d *decoder) decodeMediaRange() (Value, error) {
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return nil, err
	}
	if b == 0 || b > lengthQuote {
		return d.decodeConstrainedMedia()
	}
	code, err := d.decodeLongInt()
	if err != nil {
		return nil, err
	}
	m := WellKnownMedia(code)
	if _, ok := m.Name(); !ok || code > 0xff {
		d.reset(mark)
		return nil, fmt.Errorf("unknown content type %d at pos:%d: %w", code, mark, ErrLookupFailed)
	}
	return m, nil
}

func (d *decoder) decodeContentTypeValue() (*ContentType, error) {
	// 8.4.2.24 Content type field
	// Content-type-value = Constrained-media | Content-general-form
	// Content-general-form = Value-length Media-type
	// Media-type = (Well-known-media | Extension-Media) *(Parameter)
	mark := d.pos()
	media, cerr := d.decodeConstrainedMedia()
	if cerr == nil {
		return &ContentType{Media: media}, nil
	}
	d.reset(mark)

	fail := func(err error) (*ContentType, error) {
		d.reset(mark)
		return nil, err
	}

	end, err := d.blockEnd()
	if err != nil {
		if errors.Is(err, ErrInvalidData) {
			// neither form matched; report the constrained failure
			return fail(cerr)
		}
		return fail(err)
	}
	media, err = d.decodeMediaRange()
	if err != nil {
		return fail(err)
	}
	params, err := d.decodeParams(end)
	if err != nil {
		return fail(err)
	}
	if err := d.closeBlock(end); err != nil {
		return fail(err)
	}
	return &ContentType{Media: media, Params: params}, nil
}

// decodeParams reads parameters until the cursor reaches end.
func (d *decoder) decodeParams(end int) ([]Parameter, error) {
	var params []Parameter
	for d.pos() < end {
		p, err := d.decodeTypedParam()
		if err != nil {
			var uerr error
			p, uerr = d.decodeUntypedParam()
			if uerr != nil {
				if errors.Is(err, ErrInvalidData) {
					return nil, uerr
				}
				return nil, err
			}
		}
		if d.pos() > end {
			return nil, fmt.Errorf("parameter %s overran its block at pos:%d: %w", p.Name(), end, ErrBadLength)
		}
		params = append(params, p)
	}
	return params, nil
}

// Typed-parameter = Well-known-parameter-token Typed-value
// Well-known-parameter-token = Integer-value
func (d *decoder) decodeTypedParam() (Parameter, error) {
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return Parameter{}, err
	}
	if b >= 32 && b < 0x80 {
		return Parameter{}, fmt.Errorf("not a typed parameter at pos:%d: %w", mark, ErrInvalidData)
	}
	tok, err := d.decodeInteger()
	if err != nil {
		return Parameter{}, err
	}
	var code uint64
	switch n := tok.(type) {
	case ShortInteger:
		code = uint64(n)
	case LongInteger:
		code = uint64(n)
	}
	var fi *FieldInfo
	if code <= 0xff {
		fi, _ = LookupParam(uint8(code))
	}
	if fi == nil {
		d.reset(mark)
		return Parameter{}, fmt.Errorf("parameter 0x%x at pos:%d: %w", code, mark, ErrLookupFailed)
	}

	v, err := d.decodeParamValue(fi.Kind)
	if err != nil {
		d.reset(mark)
		return Parameter{}, fmt.Errorf("parameter %s: %w", fi.Name, err)
	}
	return Parameter{Typed: true, Code: WellKnownParam(fi.Code), Value: v}, nil
}

func (d *decoder) decodeParamValue(kind ValueKind) (Value, error) {
	switch kind {
	case KindQValue:
		return d.decodeQValue()
	case KindCharset:
		return d.decodeCharset()
	case KindVersion:
		// Version-value = Short-integer | Text-string
		b, err := d.peek()
		if err != nil {
			return nil, err
		}
		if b&0x80 != 0 {
			return d.decodeVersion()
		}
		t, err := d.decodeTextEnc()
		return Text{t}, err
	case KindText:
		t, err := d.decodeTextEnc()
		return Text{t}, err
	case KindConstrained:
		return d.decodeConstrainedMedia()
	case KindShortInt:
		v, err := d.decodeShortInt()
		return ShortInteger(v), err
	case KindInteger:
		return d.decodeInteger()
	case KindDate:
		return d.decodeDate()
	}
	return d.decodeUntypedValue()
}

// Untyped-parameter = Token-text Untyped-value
func (d *decoder) decodeUntypedParam() (Parameter, error) {
	mark := d.pos()
	tok, err := d.decodeTokenText()
	if err != nil {
		return Parameter{}, err
	}
	v, err := d.decodeUntypedValue()
	if err != nil {
		d.reset(mark)
		return Parameter{}, fmt.Errorf("parameter %s: %w", tok, err)
	}
	return Parameter{Token: tok, Value: v}, nil
}

// Untyped-value = Integer-value | Text-value
// Text-value = No-value | Token-text | Quoted-string
// No-value = <Octet 0>
func (d *decoder) decodeUntypedValue() (Value, error) {
	b, err := d.peek()
	if err != nil {
		return nil, err
	}
	switch {
	case b == 0:
		d.buf.NextByte()
		return Text{Borrow([]byte{})}, nil
	case b&0x80 != 0 || b <= 30:
		return d.decodeInteger()
	}
	t, err := d.decodeTextEnc()
	if err != nil {
		return nil, err
	}
	return Text{t}, nil
}

func (d *decoder) decodeDisposition() (Disposition, error) {
	// Content-disposition-value = Value-length Disposition *(Parameter)
	// Disposition = Form-data | Attachment | Inline | Token-text
	mark := d.pos()
	fail := func(err error) (Disposition, error) {
		d.reset(mark)
		return Disposition{}, err
	}

	end, err := d.blockEnd()
	if err != nil {
		return fail(err)
	}
	b, err := d.peek()
	if err != nil {
		return fail(err)
	}
	var out Disposition
	if b&0x80 != 0 {
		d.buf.NextByte()
		out.Type = DispositionType(b)
	} else {
		tok, err := d.decodeTextEnc()
		if err != nil {
			return fail(err)
		}
		out.Type = Text{tok}
	}
	out.Params, err = d.decodeParams(end)
	if err != nil {
		return fail(err)
	}
	if err := d.closeBlock(end); err != nil {
		return fail(err)
	}
	return out, nil
}

// decodeGenericValue captures a field value whose kind has no codec. The
// WSP header grammar guarantees every value is a short integer, a
// value-length block or a text string, so it can be skipped unparsed.
func (d *decoder) decodeGenericValue() (Opaque, error) {
	mark := d.pos()
	b, err := d.peek()
	if err != nil {
		return Opaque{}, err
	}
	switch {
	case b&0x80 != 0:
		d.buf.NextByte()
	case b <= lengthQuote:
		end, err := d.blockEnd()
		if err != nil {
			return Opaque{}, err
		}
		if err := d.seekTo(end); err != nil {
			d.reset(mark)
			return Opaque{}, err
		}
	default:
		if _, err := d.decodeTextEnc(); err != nil {
			return Opaque{}, err
		}
	}
	raw, err := d.window(mark)
	if err != nil {
		d.reset(mark)
		return Opaque{}, err
	}
	return Opaque{Borrow(raw)}, nil
}

func (d *decoder) decodeEnum(tbl enumTable, what string) (uint8, error) {
	b, err := d.peek()
	if err != nil {
		return 0, err
	}
	if _, ok := tbl.lookup(b); !ok {
		return 0, fmt.Errorf("invalid %s at pos:%d, value: 0x%x: %w", what, d.pos(), b, ErrLookupFailed)
	}
	d.buf.NextByte()
	return b, nil
}

func (d *decoder) decodeMessageClass() (Value, error) {
	// 7.2.12. Message-Class field
	// Message-class-value = Class-identifier | Token-text
	// Class-identifier = Personal | Advertisement | Informational | Auto
	// The token-text is an extension method to the message class.
	b, err := d.peek()
	if err != nil {
		return nil, err
	}
	if b < 0x80 {
		t, err := d.decodeTokenText()
		if err != nil {
			return nil, err
		}
		return Text{t}, nil
	}
	c, err := d.decodeEnum(messageClasses, "message class")
	return MessageClass(c), err
}

func (d *decoder) decodeResponseStatus() (ResponseStatus, error) {
	// Unrecognised codes are kept; callers treat anything but Ok as a
	// failure.
	b, err := d.peek()
	if err != nil {
		return 0, err
	}
	if b&0x80 == 0 {
		return 0, fmt.Errorf("invalid response status at pos:%d, value: 0x%x: %w", d.pos(), b, ErrInvalidData)
	}
	d.buf.NextByte()
	return ResponseStatus(b), nil
}

// decodeFieldValue decodes one header value according to the field's
// declared kind. On failure the cursor is left where the value started.
func (d *decoder) decodeFieldValue(fi *FieldInfo) (Value, error) {
	switch fi.Kind {
	case KindShortInt:
		v, err := d.decodeShortInt()
		return ShortInteger(v), err
	case KindLongInt:
		v, err := d.decodeLongInt()
		return LongInteger(v), err
	case KindInteger:
		return d.decodeInteger()
	case KindVersion:
		return d.decodeVersion()
	case KindDate:
		return d.decodeDate()
	case KindText:
		t, err := d.decodeTextEnc()
		return Text{t}, err
	case KindEncodedString:
		return d.decodeEncodedString()
	case KindAddress:
		return d.decodeAddress()
	case KindFrom:
		return d.decodeFrom()
	case KindContentType:
		return d.decodeContentTypeValue()
	case KindExpiry:
		return d.decodeRelativeOrAbsoluteTime()
	case KindDisposition:
		return d.decodeDisposition()
	case KindMessageType:
		v, err := d.decodeEnum(messageTypes, "message type")
		return MessageType(v), err
	case KindMessageClass:
		return d.decodeMessageClass()
	case KindPriority:
		v, err := d.decodeEnum(priorities, "priority")
		return Priority(v), err
	case KindYesNo:
		v, err := d.decodeEnum(yesNo, "yes/no")
		return YesNo(v), err
	case KindResponseStatus:
		return d.decodeResponseStatus()
	case KindStatus:
		v, err := d.decodeEnum(statuses, "status")
		return Status(v), err
	case KindSenderVisibility:
		v, err := d.decodeEnum(senderVisibilities, "sender visibility")
		return SenderVisibility(v), err
	case KindReadStatus:
		v, err := d.decodeEnum(readStatuses, "read status")
		return ReadStatus(v), err
	}
	return d.decodeGenericValue()
}

// decodeWSPHeaders reads WSP headers (well-known or application) until the
// cursor reaches end.
func (d *decoder) decodeWSPHeaders(end int) (Headers, error) {
	var hdrs Headers
	for d.pos() < end {
		b, err := d.peek()
		if err != nil {
			return nil, err
		}
		if b&0x80 != 0 {
			// numeric assigned header
			d.buf.NextByte()
			id := FieldID{Namespace: NamespaceWSP, Code: b & 0x7f}
			fi := id.Info()
			if fi == nil {
				return nil, fmt.Errorf("header 0x%x at pos:%d: %w", b, d.pos()-1, ErrUnknownField)
			}
			v, err := d.decodeFieldValue(fi)
			if err != nil {
				return nil, fmt.Errorf("parse %s header err: %w", fi.Name, err)
			}
			hdrs.Add(id, v)
			continue
		}
		// Application-header = Token-text Application-specific-value
		name, err := d.decodeTokenText()
		if err != nil {
			return nil, err
		}
		val, err := d.decodeTextEnc()
		if err != nil {
			return nil, fmt.Errorf("parse %s header err: %w", name, err)
		}
		hdrs = append(hdrs, Header{Name: name, Value: Text{val}})
	}
	if d.pos() > end {
		return nil, fmt.Errorf("headers overran their block at pos:%d: %w", end, ErrBadLength)
	}
	return hdrs, nil
}

// ReadUintvar decodes a uintvar at the cursor of b.
func ReadUintvar(b *sbuf.Buffer) (uint32, error) {
	d := decoder{buf: b}
	return d.decodeVarUint()
}

// ReadContentType decodes a Content-type-value at the cursor of b. The
// result borrows from b.
func ReadContentType(b *sbuf.Buffer) (*ContentType, error) {
	d := decoder{buf: b}
	return d.decodeContentTypeValue()
}

// ReadWSPHeaders decodes n bytes of WSP headers at the cursor of b. The
// result borrows from b.
func ReadWSPHeaders(b *sbuf.Buffer, n int) (Headers, error) {
	d := decoder{buf: b}
	if n < 0 || n > b.Remaining() {
		return nil, fmt.Errorf("headers length %d at pos:%d: %w", n, b.Offset(), ErrBadLength)
	}
	return d.decodeWSPHeaders(b.Offset() + n)
}
