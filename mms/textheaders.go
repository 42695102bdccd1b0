package mms

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseHeaders parses Name=Value lines into typed headers. Blank lines and
// lines starting with # are skipped. Names are matched without regard to
// case, with or without the X-Mms- prefix.
func ParseHeaders(text string) (Headers, error) {
	var hdrs Headers
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=': %w", lineNo, ErrInvalidData)
		}
		id, fi, ok := LookupFieldByName(name)
		if !ok {
			return nil, fmt.Errorf("line %d: header %q: %w", lineNo, strings.TrimSpace(name), ErrUnknownField)
		}
		v, err := ParseValue(fi.Kind, strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", lineNo, fi.Name, err)
		}
		hdrs.Add(id, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return hdrs, nil
}

// ParseValue converts s to a value of the given kind. It accepts what
// Value.String produces.
func ParseValue(kind ValueKind, s string) (Value, error) {
	switch kind {
	case KindShortInt:
		n, err := strconv.ParseUint(s, 10, 7)
		if err != nil {
			return nil, fmt.Errorf("short integer %q: %w", s, ErrInvalidValue)
		}
		return ShortInteger(n), nil
	case KindLongInt:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("long integer %q: %w", s, ErrInvalidValue)
		}
		return LongInteger(n), nil
	case KindInteger:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer %q: %w", s, ErrInvalidValue)
		}
		return IntegerValue(n), nil
	case KindVersion:
		return parseVersion(s)
	case KindDate:
		return parseDate(s)
	case KindText:
		return TextOf(s), nil
	case KindEncodedString:
		return NewEncodedString(s), nil
	case KindAddress:
		return ParseAddress(s), nil
	case KindFrom:
		if s == "" || s == insertAddressText {
			return FromAddress{Insert: true}, nil
		}
		return FromAddress{Address: ParseAddress(s)}, nil
	case KindContentType:
		return ParseMediaType(s)
	case KindConstrained:
		if m, ok := MediaByName(s); ok {
			return m, nil
		}
		return TextOf(s), nil
	case KindCharset:
		if cs, ok := CharsetByName(s); ok {
			return cs, nil
		}
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("charset %q: %w", s, ErrLookupFailed)
		}
		return Charset(n), nil
	case KindQValue:
		return parseQValue(s)
	case KindExpiry:
		if rel, ok := strings.CutPrefix(s, "+"); ok {
			n, err := strconv.ParseUint(rel, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("relative time %q: %w", s, ErrInvalidValue)
			}
			return Expiry{Seconds: n}, nil
		}
		d, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		return Expiry{Absolute: true, Seconds: uint64(d)}, nil
	case KindDisposition:
		return parseDisposition(s)
	case KindMessageType:
		return parseEnum(messageTypes, s, func(c uint8) Value { return MessageType(c) })
	case KindMessageClass:
		if c, ok := messageClasses.byName(s); ok {
			return MessageClass(c), nil
		}
		if s == "" {
			return nil, fmt.Errorf("empty message class: %w", ErrInvalidValue)
		}
		return TextOf(s), nil
	case KindPriority:
		return parseEnum(priorities, s, func(c uint8) Value { return Priority(c) })
	case KindYesNo:
		return parseEnum(yesNo, s, func(c uint8) Value { return YesNo(c) })
	case KindStatus:
		return parseEnum(statuses, s, func(c uint8) Value { return Status(c) })
	case KindSenderVisibility:
		return parseEnum(senderVisibilities, s, func(c uint8) Value { return SenderVisibility(c) })
	case KindReadStatus:
		return parseEnum(readStatuses, s, func(c uint8) Value { return ReadStatus(c) })
	case KindResponseStatus:
		c, ok := lookupName(responseStatuses, s)
		if !ok {
			return nil, fmt.Errorf("response status %q: %w", s, ErrLookupFailed)
		}
		return ResponseStatus(c), nil
	}
	return nil, fmt.Errorf("text value of kind %s: %w", kind, ErrUnsupported)
}

func parseEnum(tbl enumTable, s string, mk func(uint8) Value) (Value, error) {
	c, ok := tbl.byName(s)
	if !ok {
		return nil, fmt.Errorf("%q: %w", s, ErrLookupFailed)
	}
	return mk(c), nil
}

func parseVersion(s string) (Version, error) {
	major, minor, hasMinor := strings.Cut(s, ".")
	ma, err := strconv.ParseUint(major, 10, 3)
	if err != nil {
		return Version{}, fmt.Errorf("version %q: %w", s, ErrInvalidValue)
	}
	v := Version{Major: uint8(ma), Minor: NoMinor}
	if hasMinor {
		mi, err := strconv.ParseUint(minor, 10, 4)
		if err != nil || mi >= NoMinor {
			return Version{}, fmt.Errorf("version %q: %w", s, ErrInvalidValue)
		}
		v.Minor = uint8(mi)
	}
	return v, nil
}

func parseDate(s string) (Date, error) {
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Date(n), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil || t.Unix() < 0 {
		return 0, fmt.Errorf("date %q: %w", s, ErrInvalidValue)
	}
	return DateOf(t), nil
}

func parseQValue(s string) (QValue, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f >= 1 {
		return 0, fmt.Errorf("q-value %q: %w", s, ErrInvalidValue)
	}
	return QValue(f*1000 + 0.5), nil
}

// ParseMediaType parses "type/subtype name=value, name=value". Parameters
// may also be separated by ';' and values may be quoted. Well-known
// parameter names become typed parameters; anything else is kept untyped.
func ParseMediaType(s string) (*ContentType, error) {
	media, params, err := splitMediaParams(s)
	if err != nil {
		return nil, err
	}
	if media == "" {
		return nil, fmt.Errorf("media type %q: %w", s, ErrInvalidValue)
	}
	ct := &ContentType{Params: params}
	if m, ok := MediaByName(media); ok {
		ct.Media = m
	} else {
		ct.Media = TextOf(media)
	}
	return ct, nil
}

func parseDisposition(s string) (Disposition, error) {
	typ, params, err := splitMediaParams(s)
	if err != nil {
		return Disposition{}, err
	}
	out := Disposition{Params: params}
	if c, ok := dispositionTypes.byName(typ); ok {
		out.Type = DispositionType(c)
	} else {
		out.Type = TextOf(typ)
	}
	return out, nil
}

func splitMediaParams(s string) (string, []Parameter, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t;,")
	if i < 0 {
		return s, nil, nil
	}
	head := s[:i]
	var params []Parameter
	for _, field := range splitQuoted(s[i:]) {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return "", nil, fmt.Errorf("parameter %q: %w", field, ErrInvalidData)
		}
		name = strings.TrimSpace(name)
		value = unquote(strings.TrimSpace(value))
		p, err := parseParam(name, value)
		if err != nil {
			return "", nil, err
		}
		params = append(params, p)
	}
	return head, params, nil
}

func parseParam(name, value string) (Parameter, error) {
	if fi, ok := LookupParamByName(name); ok && fi.Kind != KindUnsupported {
		v, err := ParseValue(fi.Kind, value)
		if err != nil {
			return Parameter{}, fmt.Errorf("parameter %s: %w", fi.Name, err)
		}
		return Parameter{Typed: true, Code: WellKnownParam(fi.Code), Value: v}, nil
	}
	p := Parameter{Token: OwnString(name)}
	if n, err := strconv.ParseUint(value, 10, 64); err == nil {
		p.Value = IntegerValue(n)
	} else {
		p.Value = TextOf(value)
	}
	return p, nil
}

// splitQuoted splits on ',' and ';' outside double quotes, dropping empty
// fields.
func splitQuoted(s string) []string {
	var (
		out     []string
		start   int
		inQuote bool
	)
	flush := func(end int) {
		if f := strings.TrimSpace(s[start:end]); f != "" {
			out = append(out, f)
		}
		start = end + 1
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			inQuote = !inQuote
		case ',', ';':
			if !inQuote {
				flush(i)
			}
		}
	}
	if start < len(s) {
		flush(len(s))
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
