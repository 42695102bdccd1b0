package mms

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a decoded header or parameter value. The set of implementations
// is closed; each concrete type corresponds to one ValueKind.
type Value interface {
	Kind() ValueKind
	String() string

	borrowed() bool
	detach() Value
}

type ShortInteger uint8

func (v ShortInteger) Kind() ValueKind { return KindShortInt }
func (v ShortInteger) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v ShortInteger) borrowed() bool  { return false }
func (v ShortInteger) detach() Value   { return v }

type LongInteger uint64

func (v LongInteger) Kind() ValueKind { return KindLongInt }
func (v LongInteger) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v LongInteger) borrowed() bool  { return false }
func (v LongInteger) detach() Value   { return v }

// IntegerValue picks the short form for n <= 127 and the long form
// otherwise.
func IntegerValue(n uint64) Value {
	if n <= 127 {
		return ShortInteger(n)
	}
	return LongInteger(n)
}

// NoMinor is the minor version nibble meaning "major only".
const NoMinor = 15

type Version struct {
	Major uint8
	Minor uint8
}

func (v Version) Kind() ValueKind { return KindVersion }

func (v Version) String() string {
	if v.Minor == NoMinor {
		return strconv.Itoa(int(v.Major))
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) borrowed() bool { return false }
func (v Version) detach() Value  { return v }

// Date is seconds since the unix epoch.
type Date uint64

func DateOf(t time.Time) Date { return Date(t.Unix()) }

func (v Date) Time() time.Time { return time.Unix(int64(v), 0).UTC() }
func (v Date) Kind() ValueKind { return KindDate }
func (v Date) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Date) borrowed() bool  { return false }
func (v Date) detach() Value   { return v }

type Text struct {
	Data
}

func TextOf(s string) Text { return Text{OwnString(s)} }

func (v Text) Kind() ValueKind { return KindText }
func (v Text) borrowed() bool  { return v.Data.Borrowed() }
func (v Text) detach() Value   { return Text{v.Data.detach()} }

// EncodedString is text tagged with a character set. US-ASCII strings are
// written in the plain Text-string form.
type EncodedString struct {
	Charset Charset
	Text    Data
}

// NewEncodedString tags s as US-ASCII when it is plain 7-bit text and as
// UTF-8 otherwise.
func NewEncodedString(s string) EncodedString {
	cs := CharsetASCII
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			cs = CharsetUTF8
			break
		}
	}
	return EncodedString{Charset: cs, Text: OwnString(s)}
}

func (v EncodedString) Kind() ValueKind { return KindEncodedString }
func (v EncodedString) String() string  { return v.Text.String() }
func (v EncodedString) borrowed() bool  { return v.Text.Borrowed() }
func (v EncodedString) detach() Value   { return v.detachString() }

func (v EncodedString) detachString() EncodedString {
	return EncodedString{Charset: v.Charset, Text: v.Text.detach()}
}

// AddressType is the /TYPE= suffix of an address. E-mail addresses carry
// no suffix.
type AddressType string

const (
	AddressNone AddressType = ""
	AddressPLMN AddressType = "PLMN"
	AddressIPv4 AddressType = "IPv4"
	AddressIPv6 AddressType = "IPv6"
)

const addressTypeSep = "/TYPE="

type Address struct {
	EncodedString
	Type AddressType
}

// ParseAddress splits an explicit /TYPE= suffix off s. Without a suffix,
// a phone number (digits with an optional leading +) is typed PLMN and
// anything else is left untyped.
func ParseAddress(s string) Address {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, addressTypeSep); i >= 0 {
		return Address{EncodedString: NewEncodedString(s[:i]), Type: AddressType(s[i+len(addressTypeSep):])}
	}
	if isPhoneNumber(s) {
		return Address{EncodedString: NewEncodedString(s), Type: AddressPLMN}
	}
	return Address{EncodedString: NewEncodedString(s)}
}

func isPhoneNumber(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && c != '*' && c != '#' {
			return false
		}
	}
	return true
}

func (v Address) Kind() ValueKind { return KindAddress }

// Number returns the address without its type suffix.
func (v Address) Number() string { return v.Text.String() }

func (v Address) String() string {
	if v.Type == AddressNone {
		return v.Text.String()
	}
	return v.Text.String() + addressTypeSep + string(v.Type)
}

func (v Address) borrowed() bool { return v.Text.Borrowed() }

func (v Address) detach() Value {
	return Address{EncodedString: v.detachString(), Type: v.Type}
}

const insertAddressText = "<insert-address-token>"

// FromAddress is either a sender address or the insert-address token,
// which asks the relay to fill in the sender.
type FromAddress struct {
	Insert  bool
	Address Address
}

func (v FromAddress) Kind() ValueKind { return KindFrom }

func (v FromAddress) String() string {
	if v.Insert {
		return insertAddressText
	}
	return v.Address.String()
}

func (v FromAddress) borrowed() bool { return !v.Insert && v.Address.borrowed() }

func (v FromAddress) detach() Value {
	if v.Insert {
		return v
	}
	return FromAddress{Address: v.Address.detach().(Address)}
}

// Expiry is a point in time (Absolute) or a delay in seconds.
type Expiry struct {
	Absolute bool
	Seconds  uint64
}

// At resolves the expiry against now.
func (v Expiry) At(now time.Time) time.Time {
	if v.Absolute {
		return time.Unix(int64(v.Seconds), 0).UTC()
	}
	return now.Add(time.Duration(v.Seconds) * time.Second)
}

func (v Expiry) Kind() ValueKind { return KindExpiry }

func (v Expiry) String() string {
	if v.Absolute {
		return strconv.FormatUint(v.Seconds, 10)
	}
	return "+" + strconv.FormatUint(v.Seconds, 10)
}

func (v Expiry) borrowed() bool { return false }
func (v Expiry) detach() Value  { return v }

// Charset is an IANA MIBenum. Zero is the any-charset "*".
type Charset uint16

const (
	CharsetAny   Charset = 0
	CharsetASCII Charset = 3
	CharsetUTF8  Charset = 106
)

func CharsetByName(name string) (Charset, bool) {
	c, ok := lookupName(charsets, name)
	return Charset(c), ok
}

func (v Charset) Name() (string, bool) { return lookupCode(charsets, uint16(v)) }

func (v Charset) Kind() ValueKind { return KindCharset }

func (v Charset) String() string {
	if n, ok := v.Name(); ok {
		return n
	}
	return strconv.Itoa(int(v))
}

func (v Charset) borrowed() bool { return false }
func (v Charset) detach() Value  { return v }

// QValue is a quality factor in thousandths, 0 through 999.
type QValue uint16

func (v QValue) Kind() ValueKind { return KindQValue }

func (v QValue) String() string {
	return strconv.FormatFloat(float64(v)/1000, 'f', -1, 64)
}

func (v QValue) borrowed() bool { return false }
func (v QValue) detach() Value  { return v }

// WellKnownMedia is a content type from the WSP assigned numbers table.
type WellKnownMedia uint8

const (
	MediaAny                 WellKnownMedia = 0x00
	MediaTextPlain           WellKnownMedia = 0x03
	MediaMultipartMixed      WellKnownMedia = 0x0c
	MediaImageGIF            WellKnownMedia = 0x1d
	MediaImageJPEG           WellKnownMedia = 0x1e
	MediaImagePNG            WellKnownMedia = 0x20
	MediaWAPMultipartMixed   WellKnownMedia = 0x23
	MediaWAPMultipartRelated WellKnownMedia = 0x33
	MediaMMSMessage          WellKnownMedia = 0x3e
)

func MediaByName(name string) (WellKnownMedia, bool) {
	c, ok := lookupName(contentTypes, name)
	return WellKnownMedia(c), ok
}

func (v WellKnownMedia) Name() (string, bool) { return lookupCode(contentTypes, uint16(v)) }

func (v WellKnownMedia) Kind() ValueKind { return KindConstrained }

func (v WellKnownMedia) String() string {
	if n, ok := v.Name(); ok {
		return n
	}
	return fmt.Sprintf("UnknownMedia<0x%02x>", uint8(v))
}

func (v WellKnownMedia) borrowed() bool { return false }
func (v WellKnownMedia) detach() Value  { return v }

// Parameter is a content type or disposition parameter. A typed parameter
// has a well-known Code; an untyped one is named by Token.
type Parameter struct {
	Typed bool
	Code  WellKnownParam
	Token Data
	Value Value
}

func (p Parameter) Name() string {
	if p.Typed {
		if fi := p.Code.Info(); fi != nil {
			return fi.Name
		}
		return p.Code.String()
	}
	return p.Token.String()
}

func (p Parameter) String() string {
	return p.Name() + "=" + quoteParamValue(p.Value.String())
}

func quoteParamValue(s string) string {
	if s == "" || strings.ContainsAny(s, " \t,;=\"") {
		return strconv.Quote(s)
	}
	return s
}

func (p Parameter) borrowed() bool {
	return p.Token.Borrowed() || (p.Value != nil && p.Value.borrowed())
}

func (p Parameter) detach() Parameter {
	out := Parameter{Typed: p.Typed, Code: p.Code, Token: p.Token.detach()}
	if p.Value != nil {
		out.Value = p.Value.detach()
	}
	return out
}

func paramsBorrowed(ps []Parameter) bool {
	for _, p := range ps {
		if p.borrowed() {
			return true
		}
	}
	return false
}

func detachParams(ps []Parameter) []Parameter {
	if ps == nil {
		return nil
	}
	out := make([]Parameter, len(ps))
	for i, p := range ps {
		out[i] = p.detach()
	}
	return out
}

func paramsString(ps []Parameter) string {
	var sb strings.Builder
	for i, p := range ps {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// ContentType is a media type, either well-known (WellKnownMedia) or an
// extension media name (Text), with parameters.
type ContentType struct {
	Media  Value
	Params []Parameter
}

// MediaName returns the media type as text.
func (ct *ContentType) MediaName() string {
	if ct == nil || ct.Media == nil {
		return ""
	}
	return ct.Media.String()
}

// Param returns the value of the first parameter with the given name.
func (ct *ContentType) Param(name string) (Value, bool) {
	for _, p := range ct.Params {
		if strings.EqualFold(p.Name(), name) {
			return p.Value, true
		}
	}
	return nil, false
}

// IsMultipart reports whether the media type is one of the multipart
// families.
func (ct *ContentType) IsMultipart() bool {
	n := strings.ToLower(ct.MediaName())
	return strings.HasPrefix(n, "multipart/") || strings.HasPrefix(n, "application/vnd.wap.multipart.")
}

func (ct *ContentType) Kind() ValueKind { return KindContentType }

func (ct *ContentType) String() string {
	if ct == nil {
		return ""
	}
	return ct.MediaName() + paramsString(ct.Params)
}

func (ct *ContentType) borrowed() bool {
	return (ct.Media != nil && ct.Media.borrowed()) || paramsBorrowed(ct.Params)
}

func (ct *ContentType) detach() Value { return ct.clone() }

func (ct *ContentType) clone() *ContentType {
	out := &ContentType{Params: detachParams(ct.Params)}
	if ct.Media != nil {
		out.Media = ct.Media.detach()
	}
	return out
}

type DispositionType uint8

const (
	FormData   DispositionType = 128
	Attachment DispositionType = 129
	Inline     DispositionType = 130
)

var dispositionTypes = enumTable{
	{"form-data", 128},
	{"attachment", 129},
	{"inline", 130},
}

func (v DispositionType) Kind() ValueKind { return KindDisposition }
func (v DispositionType) String() string  { return dispositionTypes.name(uint8(v), "Disposition") }
func (v DispositionType) borrowed() bool  { return false }
func (v DispositionType) detach() Value   { return v }

// Disposition is a Content-Disposition value. Type is a DispositionType or
// a Text token.
type Disposition struct {
	Type   Value
	Params []Parameter
}

// Filename returns the filename parameter, if any.
func (v Disposition) Filename() string {
	for _, p := range v.Params {
		if strings.EqualFold(p.Name(), "filename") {
			return p.Value.String()
		}
	}
	return ""
}

func (v Disposition) Kind() ValueKind { return KindDisposition }

func (v Disposition) String() string {
	if v.Type == nil {
		return paramsString(v.Params)
	}
	return v.Type.String() + paramsString(v.Params)
}

func (v Disposition) borrowed() bool {
	return (v.Type != nil && v.Type.borrowed()) || paramsBorrowed(v.Params)
}

func (v Disposition) detach() Value {
	out := Disposition{Params: detachParams(v.Params)}
	if v.Type != nil {
		out.Type = v.Type.detach()
	}
	return out
}

// Opaque is the raw encoding of a value that has no dedicated codec. It is
// written back verbatim.
type Opaque struct {
	Data
}

func (v Opaque) Kind() ValueKind { return KindUnsupported }
func (v Opaque) String() string  { return "0x" + hex.EncodeToString(v.Bytes()) }
func (v Opaque) borrowed() bool  { return v.Data.Borrowed() }
func (v Opaque) detach() Value   { return Opaque{v.Data.detach()} }

type MessageType uint8

const (
	MSendReq         MessageType = 128
	MSendConf        MessageType = 129
	MNotificationInd MessageType = 130
	MNotifyrespInd   MessageType = 131
	MRetrieveConf    MessageType = 132
	MAcknowledgeInd  MessageType = 133
	MDeliveryInd     MessageType = 134
	MReadRecInd      MessageType = 135
	MReadOrigInd     MessageType = 136
)

func (v MessageType) Kind() ValueKind { return KindMessageType }
func (v MessageType) String() string  { return messageTypes.name(uint8(v), "MessageType") }
func (v MessageType) borrowed() bool  { return false }
func (v MessageType) detach() Value   { return v }

type MessageClass uint8

const (
	ClassPersonal      MessageClass = 128
	ClassAdvertisement MessageClass = 129
	ClassInformational MessageClass = 130
	ClassAuto          MessageClass = 131
)

func (v MessageClass) Kind() ValueKind { return KindMessageClass }
func (v MessageClass) String() string  { return messageClasses.name(uint8(v), "MessageClass") }
func (v MessageClass) borrowed() bool  { return false }
func (v MessageClass) detach() Value   { return v }

type Priority uint8

const (
	PriorityLow    Priority = 128
	PriorityNormal Priority = 129
	PriorityHigh   Priority = 130
)

func (v Priority) Kind() ValueKind { return KindPriority }
func (v Priority) String() string  { return priorities.name(uint8(v), "Priority") }
func (v Priority) borrowed() bool  { return false }
func (v Priority) detach() Value   { return v }

type YesNo uint8

const (
	Yes YesNo = 128
	No  YesNo = 129
)

func YesNoOf(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

func (v YesNo) Bool() bool      { return v == Yes }
func (v YesNo) Kind() ValueKind { return KindYesNo }
func (v YesNo) String() string  { return yesNo.name(uint8(v), "YesNo") }
func (v YesNo) borrowed() bool  { return false }
func (v YesNo) detach() Value   { return v }

type ResponseStatus uint8

const (
	StatusOk                            ResponseStatus = 128
	StatusErrorUnspecified              ResponseStatus = 129
	StatusErrorServiceDenied            ResponseStatus = 130
	StatusErrorMessageFormatCorrupt     ResponseStatus = 131
	StatusErrorSendingAddressUnresolved ResponseStatus = 132
	StatusErrorMessageNotFound          ResponseStatus = 133
	StatusErrorNetworkProblem           ResponseStatus = 134
	StatusErrorContentNotAccepted       ResponseStatus = 135
	StatusErrorUnsupportedMessage       ResponseStatus = 136

	StatusErrorTransientFailure        ResponseStatus = 0xc0
	StatusErrorTransientNetworkProblem ResponseStatus = 0xc3
	StatusErrorPermanentFailure        ResponseStatus = 0xe0
	StatusErrorPermanentServiceDenied  ResponseStatus = 0xe1
)

func (v ResponseStatus) Kind() ValueKind { return KindResponseStatus }

func (v ResponseStatus) String() string {
	if n, ok := lookupCode(responseStatuses, uint16(v)); ok {
		return n
	}
	return fmt.Sprintf("UnknownResponseStatus<%d>", uint8(v))
}

// Ok reports whether the relay accepted the request.
func (v ResponseStatus) Ok() bool { return v == StatusOk }

// Transient reports whether the failure may succeed on retry.
func (v ResponseStatus) Transient() bool { return v >= 0xc0 && v < 0xe0 }

func (v ResponseStatus) borrowed() bool { return false }
func (v ResponseStatus) detach() Value  { return v }

// Status is the X-Mms-Status of a delivery report.
type Status uint8

const (
	StatusExpired       Status = 128
	StatusRetrieved     Status = 129
	StatusRejected      Status = 130
	StatusDeferred      Status = 131
	StatusUnrecognised  Status = 132
	StatusIndeterminate Status = 133
	StatusForwarded     Status = 134
	StatusUnreachable   Status = 135
)

// DeliveryState is the persisted outcome of a sent message.
type DeliveryState string

const (
	DeliveryOK      DeliveryState = "DeliveryOK"
	DeliveryFailed  DeliveryState = "DeliveryFailed"
	DeliveryPending DeliveryState = "DeliveryPending"
	DeliveryError   DeliveryState = "Error"
)

func (v Status) DeliveryState() DeliveryState {
	switch v {
	case StatusRetrieved:
		return DeliveryOK
	case StatusExpired, StatusRejected:
		return DeliveryFailed
	case StatusDeferred:
		return DeliveryPending
	}
	return DeliveryError
}

func (v Status) Kind() ValueKind { return KindStatus }
func (v Status) String() string  { return statuses.name(uint8(v), "Status") }
func (v Status) borrowed() bool  { return false }
func (v Status) detach() Value   { return v }

type SenderVisibility uint8

const (
	Hide SenderVisibility = 128
	Show SenderVisibility = 129
)

func (v SenderVisibility) Kind() ValueKind { return KindSenderVisibility }

func (v SenderVisibility) String() string {
	return senderVisibilities.name(uint8(v), "SenderVisibility")
}

func (v SenderVisibility) borrowed() bool { return false }
func (v SenderVisibility) detach() Value  { return v }

type ReadStatus uint8

const (
	ReadStatusRead    ReadStatus = 128
	ReadStatusDeleted ReadStatus = 129
)

func (v ReadStatus) Kind() ValueKind { return KindReadStatus }
func (v ReadStatus) String() string  { return readStatuses.name(uint8(v), "ReadStatus") }
func (v ReadStatus) borrowed() bool  { return false }
func (v ReadStatus) detach() Value   { return v }
