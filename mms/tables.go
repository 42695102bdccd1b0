package mms

import (
	"fmt"
	"strings"
)

// ValueKind is the declared value type of a header field or parameter.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindShortInt
	KindLongInt
	KindInteger
	KindVersion
	KindDate
	KindText
	KindEncodedString
	KindAddress
	KindFrom
	KindContentType
	KindConstrained
	KindCharset
	KindQValue
	KindMessageType
	KindMessageClass
	KindPriority
	KindYesNo
	KindResponseStatus
	KindStatus
	KindSenderVisibility
	KindReadStatus
	KindExpiry
	KindDisposition
	KindUnsupported
)

var kindNames = [...]string{
	KindNone:             "none",
	KindShortInt:         "short-integer",
	KindLongInt:          "long-integer",
	KindInteger:          "integer",
	KindVersion:          "version",
	KindDate:             "date",
	KindText:             "text",
	KindEncodedString:    "encoded-string",
	KindAddress:          "address",
	KindFrom:             "from",
	KindContentType:      "content-type",
	KindConstrained:      "constrained-media",
	KindCharset:          "charset",
	KindQValue:           "q-value",
	KindMessageType:      "message-type",
	KindMessageClass:     "message-class",
	KindPriority:         "priority",
	KindYesNo:            "yes-no",
	KindResponseStatus:   "response-status",
	KindStatus:           "status",
	KindSenderVisibility: "sender-visibility",
	KindReadStatus:       "read-status",
	KindExpiry:           "expiry",
	KindDisposition:      "disposition",
	KindUnsupported:      "unsupported",
}

func (k ValueKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("UnknownKind<%d>", int(k))
}

// Namespace selects which field table a code belongs to.
type Namespace int

const (
	NamespaceWSP Namespace = 1
	NamespaceMMS Namespace = 2
)

func (n Namespace) String() string {
	switch n {
	case NamespaceWSP:
		return "wsp"
	case NamespaceMMS:
		return "mms"
	}
	return fmt.Sprintf("UnknownNamespace<%d>", int(n))
}

// FieldID identifies a header field by table and 7-bit code.
type FieldID struct {
	Namespace Namespace
	Code      uint8
}

func (id FieldID) String() string {
	if fi := id.Info(); fi != nil {
		return fi.Name
	}
	return fmt.Sprintf("%s<0x%02x>", id.Namespace, id.Code)
}

// Info resolves id in its own table.
func (id FieldID) Info() *FieldInfo {
	switch id.Namespace {
	case NamespaceMMS:
		return findInfo(mmsFields, id.Code)
	case NamespaceWSP:
		return findInfo(wspFields, id.Code)
	}
	return nil
}

// FieldInfo describes a header field or a well-known parameter.
type FieldInfo struct {
	Code uint8
	Name string
	Kind ValueKind

	// alt marks an alternate encoding of a name that appears earlier in
	// the table. Name lookups skip it.
	alt bool
}

// MMSField is an MMS header field code (WAP-209 7.3).
type MMSField uint8

const (
	FieldBcc                   MMSField = 0x01
	FieldCc                    MMSField = 0x02
	FieldContentLocation       MMSField = 0x03
	FieldContentType           MMSField = 0x04
	FieldDate                  MMSField = 0x05
	FieldDeliveryReport        MMSField = 0x06
	FieldDeliveryTime          MMSField = 0x07
	FieldExpiry                MMSField = 0x08
	FieldFrom                  MMSField = 0x09
	FieldMessageClass          MMSField = 0x0a
	FieldMessageID             MMSField = 0x0b
	FieldMessageType           MMSField = 0x0c
	FieldMMSVersion            MMSField = 0x0d
	FieldMessageSize           MMSField = 0x0e
	FieldPriority              MMSField = 0x0f
	FieldReadReport            MMSField = 0x10
	FieldReportAllowed         MMSField = 0x11
	FieldResponseStatus        MMSField = 0x12
	FieldResponseText          MMSField = 0x13
	FieldSenderVisibility      MMSField = 0x14
	FieldStatus                MMSField = 0x15
	FieldSubject               MMSField = 0x16
	FieldTo                    MMSField = 0x17
	FieldTransactionID         MMSField = 0x18
	FieldRetrieveStatus        MMSField = 0x19
	FieldRetrieveText          MMSField = 0x1a
	FieldReadStatus            MMSField = 0x1b
	FieldReplyCharging         MMSField = 0x1c
	FieldReplyChargingDeadline MMSField = 0x1d
	FieldReplyChargingID       MMSField = 0x1e
	FieldReplyChargingSize     MMSField = 0x1f
	FieldPreviouslySentBy      MMSField = 0x20
	FieldPreviouslySentDate    MMSField = 0x21
)

// ID returns the field identity in the MMS namespace.
func (f MMSField) ID() FieldID { return FieldID{Namespace: NamespaceMMS, Code: uint8(f)} }

func (f MMSField) String() string { return f.ID().String() }

var mmsFields = []FieldInfo{
	{Code: 0x01, Name: "Bcc", Kind: KindAddress},
	{Code: 0x02, Name: "Cc", Kind: KindAddress},
	{Code: 0x03, Name: "X-Mms-Content-Location", Kind: KindText},
	{Code: 0x04, Name: "Content-Type", Kind: KindContentType},
	{Code: 0x05, Name: "Date", Kind: KindDate},
	{Code: 0x06, Name: "X-Mms-Delivery-Report", Kind: KindYesNo},
	{Code: 0x07, Name: "X-Mms-Delivery-Time", Kind: KindExpiry},
	{Code: 0x08, Name: "X-Mms-Expiry", Kind: KindExpiry},
	{Code: 0x09, Name: "From", Kind: KindFrom},
	{Code: 0x0a, Name: "X-Mms-Message-Class", Kind: KindMessageClass},
	{Code: 0x0b, Name: "Message-ID", Kind: KindText},
	{Code: 0x0c, Name: "X-Mms-Message-Type", Kind: KindMessageType},
	{Code: 0x0d, Name: "X-Mms-MMS-Version", Kind: KindVersion},
	{Code: 0x0e, Name: "X-Mms-Message-Size", Kind: KindLongInt},
	{Code: 0x0f, Name: "X-Mms-Priority", Kind: KindPriority},
	{Code: 0x10, Name: "X-Mms-Read-Report", Kind: KindYesNo},
	{Code: 0x11, Name: "X-Mms-Report-Allowed", Kind: KindYesNo},
	{Code: 0x12, Name: "X-Mms-Response-Status", Kind: KindResponseStatus},
	{Code: 0x13, Name: "X-Mms-Response-Text", Kind: KindEncodedString},
	{Code: 0x14, Name: "X-Mms-Sender-Visibility", Kind: KindSenderVisibility},
	{Code: 0x15, Name: "X-Mms-Status", Kind: KindStatus},
	{Code: 0x16, Name: "Subject", Kind: KindEncodedString},
	{Code: 0x17, Name: "To", Kind: KindAddress},
	{Code: 0x18, Name: "X-Mms-Transaction-Id", Kind: KindText},
	{Code: 0x19, Name: "X-Mms-Retrieve-Status", Kind: KindShortInt},
	{Code: 0x1a, Name: "X-Mms-Retrieve-Text", Kind: KindEncodedString},
	{Code: 0x1b, Name: "X-Mms-Read-Status", Kind: KindReadStatus},
	{Code: 0x1c, Name: "X-Mms-Reply-Charging", Kind: KindShortInt},
	{Code: 0x1d, Name: "X-Mms-Reply-Charging-Deadline", Kind: KindExpiry},
	{Code: 0x1e, Name: "X-Mms-Reply-Charging-ID", Kind: KindText},
	{Code: 0x1f, Name: "X-Mms-Reply-Charging-Size", Kind: KindLongInt},
	{Code: 0x20, Name: "X-Mms-Previously-Sent-By", Kind: KindUnsupported},
	{Code: 0x21, Name: "X-Mms-Previously-Sent-Date", Kind: KindUnsupported},
}

// WSPField is a WSP well-known header field code (WAP-230 Table 39).
type WSPField uint8

const (
	WSPContentLocation    WSPField = 0x0e
	WSPContentType        WSPField = 0x11
	WSPDate               WSPField = 0x12
	WSPContentDisposition WSPField = 0x2e
	WSPXWapApplicationID  WSPField = 0x2f
	WSPContentID          WSPField = 0x40
	// Content-Disposition as re-encoded in encoding version 1.4.
	WSPContentDisposition14 WSPField = 0x45
)

func (f WSPField) ID() FieldID { return FieldID{Namespace: NamespaceWSP, Code: uint8(f)} }

func (f WSPField) String() string { return f.ID().String() }

var wspFields = []FieldInfo{
	{Code: 0x00, Name: "Accept", Kind: KindUnsupported},
	{Code: 0x01, Name: "Accept-Charset", Kind: KindUnsupported},
	{Code: 0x02, Name: "Accept-Encoding", Kind: KindUnsupported},
	{Code: 0x03, Name: "Accept-Language", Kind: KindUnsupported},
	{Code: 0x04, Name: "Accept-Ranges", Kind: KindUnsupported},
	{Code: 0x05, Name: "Age", Kind: KindInteger},
	{Code: 0x06, Name: "Allow", Kind: KindUnsupported},
	{Code: 0x07, Name: "Authorization", Kind: KindUnsupported},
	{Code: 0x08, Name: "Cache-Control", Kind: KindUnsupported},
	{Code: 0x09, Name: "Connection", Kind: KindUnsupported},
	{Code: 0x0a, Name: "Content-Base", Kind: KindText},
	{Code: 0x0b, Name: "Content-Encoding", Kind: KindUnsupported},
	{Code: 0x0c, Name: "Content-Language", Kind: KindUnsupported},
	{Code: 0x0d, Name: "Content-Length", Kind: KindInteger},
	{Code: 0x0e, Name: "Content-Location", Kind: KindText},
	{Code: 0x0f, Name: "Content-MD5", Kind: KindUnsupported},
	{Code: 0x10, Name: "Content-Range", Kind: KindUnsupported},
	{Code: 0x11, Name: "Content-Type", Kind: KindContentType},
	{Code: 0x12, Name: "Date", Kind: KindDate},
	{Code: 0x13, Name: "Etag", Kind: KindText},
	{Code: 0x14, Name: "Expires", Kind: KindDate},
	{Code: 0x15, Name: "From", Kind: KindText},
	{Code: 0x16, Name: "Host", Kind: KindText},
	{Code: 0x17, Name: "If-Modified-Since", Kind: KindDate},
	{Code: 0x18, Name: "If-Match", Kind: KindText},
	{Code: 0x19, Name: "If-None-Match", Kind: KindText},
	{Code: 0x1a, Name: "If-Range", Kind: KindUnsupported},
	{Code: 0x1b, Name: "If-Unmodified-Since", Kind: KindDate},
	{Code: 0x1c, Name: "Location", Kind: KindText},
	{Code: 0x1d, Name: "Last-Modified", Kind: KindDate},
	{Code: 0x1e, Name: "Max-Forwards", Kind: KindInteger},
	{Code: 0x1f, Name: "Pragma", Kind: KindUnsupported},
	{Code: 0x20, Name: "Proxy-Authenticate", Kind: KindUnsupported},
	{Code: 0x21, Name: "Proxy-Authorization", Kind: KindUnsupported},
	{Code: 0x22, Name: "Public", Kind: KindUnsupported},
	{Code: 0x23, Name: "Range", Kind: KindUnsupported},
	{Code: 0x24, Name: "Referer", Kind: KindText},
	{Code: 0x25, Name: "Retry-After", Kind: KindUnsupported},
	{Code: 0x26, Name: "Server", Kind: KindText},
	{Code: 0x27, Name: "Transfer-Encoding", Kind: KindUnsupported},
	{Code: 0x28, Name: "Upgrade", Kind: KindText},
	{Code: 0x29, Name: "User-Agent", Kind: KindText},
	{Code: 0x2a, Name: "Vary", Kind: KindUnsupported},
	{Code: 0x2b, Name: "Via", Kind: KindText},
	{Code: 0x2c, Name: "Warning", Kind: KindUnsupported},
	{Code: 0x2d, Name: "WWW-Authenticate", Kind: KindUnsupported},
	{Code: 0x2e, Name: "Content-Disposition", Kind: KindDisposition},
	{Code: 0x2f, Name: "X-Wap-Application-Id", Kind: KindUnsupported},
	{Code: 0x30, Name: "X-Wap-Content-URI", Kind: KindText},
	{Code: 0x31, Name: "X-Wap-Initiator-URI", Kind: KindText},
	{Code: 0x32, Name: "Accept-Application", Kind: KindUnsupported},
	{Code: 0x33, Name: "Bearer-Indication", Kind: KindInteger},
	{Code: 0x34, Name: "Push-Flag", Kind: KindShortInt},
	{Code: 0x35, Name: "Profile", Kind: KindText},
	{Code: 0x36, Name: "Profile-Diff", Kind: KindUnsupported},
	{Code: 0x37, Name: "Profile-Warning", Kind: KindUnsupported},
	{Code: 0x38, Name: "Expect", Kind: KindUnsupported},
	{Code: 0x39, Name: "TE", Kind: KindUnsupported},
	{Code: 0x3a, Name: "Trailer", Kind: KindUnsupported},
	{Code: 0x3b, Name: "Accept-Charset", Kind: KindUnsupported, alt: true},
	{Code: 0x3c, Name: "Accept-Encoding", Kind: KindUnsupported, alt: true},
	{Code: 0x3d, Name: "Cache-Control", Kind: KindUnsupported, alt: true},
	{Code: 0x3e, Name: "Content-Range", Kind: KindUnsupported, alt: true},
	{Code: 0x3f, Name: "X-Wap-Tod", Kind: KindUnsupported},
	{Code: 0x40, Name: "Content-ID", Kind: KindText},
	{Code: 0x41, Name: "Set-Cookie", Kind: KindUnsupported},
	{Code: 0x42, Name: "Cookie", Kind: KindUnsupported},
	{Code: 0x43, Name: "Encoding-Version", Kind: KindUnsupported},
	{Code: 0x44, Name: "Profile-Warning", Kind: KindUnsupported, alt: true},
	{Code: 0x45, Name: "Content-Disposition", Kind: KindDisposition, alt: true},
	{Code: 0x46, Name: "X-WAP-Security", Kind: KindUnsupported},
	{Code: 0x47, Name: "Cache-Control", Kind: KindUnsupported, alt: true},
}

// WellKnownParam is a WSP well-known parameter code (WAP-230 Table 38),
// without the short-integer high bit.
type WellKnownParam uint8

const (
	QParam                WellKnownParam = 0x00
	CharsetParam          WellKnownParam = 0x01
	LevelParam            WellKnownParam = 0x02
	TypeParam             WellKnownParam = 0x03
	DepNameParam          WellKnownParam = 0x05
	DepFilenameParam      WellKnownParam = 0x06
	DifferencesParam      WellKnownParam = 0x07
	PaddingParam          WellKnownParam = 0x08
	CtMrTypeParam         WellKnownParam = 0x09
	DepStartParam         WellKnownParam = 0x0a
	DepStartInfoParam     WellKnownParam = 0x0b
	DepCommentParam       WellKnownParam = 0x0c
	DepDomainParam        WellKnownParam = 0x0d
	MaxAgeParam           WellKnownParam = 0x0e
	DepPathParam          WellKnownParam = 0x0f
	SecureParam           WellKnownParam = 0x10
	SecParam              WellKnownParam = 0x11
	MacParam              WellKnownParam = 0x12
	CreationDateParam     WellKnownParam = 0x13
	ModificationDateParam WellKnownParam = 0x14
	ReadDateParam         WellKnownParam = 0x15
	SizeParam             WellKnownParam = 0x16
	NameParam             WellKnownParam = 0x17
	FilenameParam         WellKnownParam = 0x18
	StartParam            WellKnownParam = 0x19
	StartInfoParam        WellKnownParam = 0x1a
	CommentParam          WellKnownParam = 0x1b
	DomainParam           WellKnownParam = 0x1c
	PathParam             WellKnownParam = 0x1d
)

func (p WellKnownParam) Info() *FieldInfo { return findInfo(wellKnownParams, uint8(p)) }

func (p WellKnownParam) String() string {
	if fi := p.Info(); fi != nil {
		return fi.Name
	}
	return fmt.Sprintf("UnknownParam<0x%02x>", uint8(p))
}

// The WSP 1.2 encodings of name/filename/start/start-info come first so
// that name lookups pick what handsets expect; the 1.4 re-encodings are
// alternates. Type 0x03 is the integer form; 0x09 is the multipart/related
// constrained form used by MMS.
var wellKnownParams = []FieldInfo{
	{Code: 0x00, Name: "q", Kind: KindQValue},
	{Code: 0x01, Name: "charset", Kind: KindCharset},
	{Code: 0x02, Name: "level", Kind: KindVersion},
	{Code: 0x03, Name: "type", Kind: KindInteger, alt: true},
	{Code: 0x05, Name: "name", Kind: KindText},
	{Code: 0x06, Name: "filename", Kind: KindText},
	{Code: 0x07, Name: "differences", Kind: KindUnsupported},
	{Code: 0x08, Name: "padding", Kind: KindShortInt},
	{Code: 0x09, Name: "type", Kind: KindConstrained},
	{Code: 0x0a, Name: "start", Kind: KindText},
	{Code: 0x0b, Name: "start-info", Kind: KindText},
	{Code: 0x0c, Name: "comment", Kind: KindText},
	{Code: 0x0d, Name: "domain", Kind: KindText},
	{Code: 0x0e, Name: "max-age", Kind: KindInteger},
	{Code: 0x0f, Name: "path", Kind: KindText},
	{Code: 0x10, Name: "secure", Kind: KindUnsupported},
	{Code: 0x11, Name: "sec", Kind: KindShortInt},
	{Code: 0x12, Name: "mac", Kind: KindText},
	{Code: 0x13, Name: "creation-date", Kind: KindDate},
	{Code: 0x14, Name: "modification-date", Kind: KindDate},
	{Code: 0x15, Name: "read-date", Kind: KindDate},
	{Code: 0x16, Name: "size", Kind: KindInteger},
	{Code: 0x17, Name: "name", Kind: KindText, alt: true},
	{Code: 0x18, Name: "filename", Kind: KindText, alt: true},
	{Code: 0x19, Name: "start", Kind: KindText, alt: true},
	{Code: 0x1a, Name: "start-info", Kind: KindText, alt: true},
	{Code: 0x1b, Name: "comment", Kind: KindText, alt: true},
	{Code: 0x1c, Name: "domain", Kind: KindText, alt: true},
	{Code: 0x1d, Name: "path", Kind: KindText, alt: true},
}

func findInfo(tbl []FieldInfo, code uint8) *FieldInfo {
	for i := range tbl {
		if tbl[i].Code == code {
			return &tbl[i]
		}
	}
	return nil
}

func findInfoByName(tbl []FieldInfo, name string) *FieldInfo {
	for i := range tbl {
		if !tbl[i].alt && strings.EqualFold(tbl[i].Name, name) {
			return &tbl[i]
		}
	}
	return nil
}

// LookupField resolves a header field code, preferring the MMS table and
// falling back to the WSP table.
func LookupField(code uint8) (FieldID, *FieldInfo, bool) {
	if fi := findInfo(mmsFields, code); fi != nil {
		return FieldID{Namespace: NamespaceMMS, Code: code}, fi, true
	}
	if fi := findInfo(wspFields, code); fi != nil {
		return FieldID{Namespace: NamespaceWSP, Code: code}, fi, true
	}
	return FieldID{}, nil, false
}

// LookupFieldByName resolves a header name. The X-Mms- prefix is optional
// and case is ignored.
func LookupFieldByName(name string) (FieldID, *FieldInfo, bool) {
	name = strings.TrimSpace(name)
	for _, n := range []string{name, "X-Mms-" + name} {
		if fi := findInfoByName(mmsFields, n); fi != nil {
			return FieldID{Namespace: NamespaceMMS, Code: fi.Code}, fi, true
		}
	}
	if fi := findInfoByName(wspFields, name); fi != nil {
		return FieldID{Namespace: NamespaceWSP, Code: fi.Code}, fi, true
	}
	return FieldID{}, nil, false
}

// LookupParam resolves a well-known parameter code.
func LookupParam(code uint8) (*FieldInfo, bool) {
	fi := findInfo(wellKnownParams, code)
	return fi, fi != nil
}

// LookupParamByName resolves a parameter name to its preferred encoding.
func LookupParamByName(name string) (*FieldInfo, bool) {
	fi := findInfoByName(wellKnownParams, strings.TrimSpace(name))
	return fi, fi != nil
}

type namedCode struct {
	name string
	code uint16
}

// https://www.iana.org/assignments/character-sets/character-sets.xhtml
var charsets = []namedCode{
	{"*", 0},
	{"US-ASCII", 3},
	{"UTF-8", 106},
	{"big5", 2026},
	{"iso-10646-ucs-2", 1000},
	{"UTF-16", 1015},
	{"iso-8859-1", 4},
	{"iso-8859-2", 5},
	{"iso-8859-3", 6},
	{"iso-8859-4", 7},
	{"iso-8859-5", 8},
	{"iso-8859-6", 9},
	{"iso-8859-7", 10},
	{"iso-8859-8", 11},
	{"iso-8859-9", 12},
	{"shift_JIS", 17},
}

func lookupCode(tbl []namedCode, code uint16) (string, bool) {
	for _, e := range tbl {
		if e.code == code {
			return e.name, true
		}
	}
	return "", false
}

func lookupName(tbl []namedCode, name string) (uint16, bool) {
	name = strings.TrimSpace(name)
	for _, e := range tbl {
		if strings.EqualFold(e.name, name) {
			return e.code, true
		}
	}
	return 0, false
}

// http://openmobilealliance.org/wp/OMNA/wsp/wsp_content_type_codes.html
var contentTypes = []namedCode{
	{"*/*", 0x00},
	{"text/*", 0x01},
	{"text/html", 0x02},
	{"text/plain", 0x03},
	{"text/x-hdml", 0x04},
	{"text/x-ttml", 0x05},
	{"text/x-vCalendar", 0x06},
	{"text/x-vCard", 0x07},
	{"text/vnd.wap.wml", 0x08},
	{"text/vnd.wap.wmlscript", 0x09},
	{"text/vnd.wap.wta-event", 0x0a},
	{"multipart/*", 0x0b},
	{"multipart/mixed", 0x0c},
	{"multipart/form-data", 0x0d},
	{"multipart/byteranges", 0x0e},
	{"multipart/alternative", 0x0f},
	{"application/*", 0x10},
	{"application/java-vm", 0x11},
	{"application/x-www-form-urlencoded", 0x12},
	{"application/x-hdmlc", 0x13},
	{"application/vnd.wap.wmlc", 0x14},
	{"application/vnd.wap.wmlscriptc", 0x15},
	{"application/vnd.wap.wta-eventc", 0x16},
	{"application/vnd.wap.uaprof", 0x17},
	{"application/vnd.wap.wtls-ca-certificate", 0x18},
	{"application/vnd.wap.wtls-user-certificate", 0x19},
	{"application/x-x509-ca-cert", 0x1a},
	{"application/x-x509-user-cert", 0x1b},
	{"image/*", 0x1c},
	{"image/gif", 0x1d},
	{"image/jpeg", 0x1e},
	{"image/tiff", 0x1f},
	{"image/png", 0x20},
	{"image/vnd.wap.wbmp", 0x21},
	{"application/vnd.wap.multipart.*", 0x22},
	{"application/vnd.wap.multipart.mixed", 0x23},
	{"application/vnd.wap.multipart.form-data", 0x24},
	{"application/vnd.wap.multipart.byteranges", 0x25},
	{"application/vnd.wap.multipart.alternative", 0x26},
	{"application/xml", 0x27},
	{"text/xml", 0x28},
	{"application/vnd.wap.wbxml", 0x29},
	{"application/x-x968-cross-cert", 0x2a},
	{"application/x-x968-ca-cert", 0x2b},
	{"application/x-x968-user-cert", 0x2c},
	{"text/vnd.wap.si", 0x2d},
	{"application/vnd.wap.sic", 0x2e},
	{"text/vnd.wap.sl", 0x2f},
	{"application/vnd.wap.slc", 0x30},
	{"text/vnd.wap.co", 0x31},
	{"application/vnd.wap.coc", 0x32},
	{"application/vnd.wap.multipart.related", 0x33},
	{"application/vnd.wap.sia", 0x34},
	{"text/vnd.wap.connectivity-xml", 0x35},
	{"application/vnd.wap.connectivity-wbxml", 0x36},
	{"application/pkcs7-mime", 0x37},
	{"application/vnd.wap.hashed-certificate", 0x38},
	{"application/vnd.wap.signed-certificate", 0x39},
	{"application/vnd.wap.cert-response", 0x3a},
	{"application/xhtml+xml", 0x3b},
	{"application/wml+xml", 0x3c},
	{"text/css", 0x3d},
	{"application/vnd.wap.mms-message", 0x3e},
	{"application/vnd.wap.rollover-certificate", 0x3f},
	{"application/vnd.wap.locc+wbxml", 0x40},
	{"application/vnd.wap.loc+xml", 0x41},
	{"application/vnd.syncml.dm+wbxml", 0x42},
	{"application/vnd.syncml.dm+xml", 0x43},
	{"application/vnd.syncml.notification", 0x44},
	{"application/vnd.wap.xhtml+xml", 0x45},
	{"application/vnd.wv.csp.cir", 0x46},
	{"application/vnd.oma.dd+xml", 0x47},
	{"application/vnd.oma.drm.message", 0x48},
	{"application/vnd.oma.drm.content", 0x49},
	{"application/vnd.oma.drm.rights+xml", 0x4a},
	{"application/vnd.oma.drm.rights+wbxml", 0x4b},
	{"application/vnd.wv.csp+xml", 0x4c},
	{"application/vnd.wv.csp+wbxml", 0x4d},
	{"application/vnd.syncml.ds.notification", 0x4e},
	{"audio/*", 0x4f},
	{"video/*", 0x50},
}

// enumEntry is one member of a small protocol enumeration. code carries
// the high bit exactly as it appears on the wire.
type enumEntry struct {
	name string
	code uint8
}

// enumTable is dense: entry i has code 0x80|i. That lets lookup index
// directly by the low seven bits.
type enumTable []enumEntry

func (t enumTable) lookup(code uint8) (enumEntry, bool) {
	if code&0x80 == 0 {
		return enumEntry{}, false
	}
	idx := int(code & 0x7f)
	if idx >= len(t) {
		return enumEntry{}, false
	}
	e := t[idx]
	if e.code != code {
		return enumEntry{}, false
	}
	return e, true
}

func (t enumTable) byName(name string) (uint8, bool) {
	name = strings.TrimSpace(name)
	for _, e := range t {
		if strings.EqualFold(e.name, name) {
			return e.code, true
		}
	}
	return 0, false
}

func (t enumTable) name(code uint8, what string) string {
	if e, ok := t.lookup(code); ok {
		return e.name
	}
	return fmt.Sprintf("Unknown%s<%d>", what, code)
}

var messageTypes = enumTable{
	{"m-send-req", 0x80},
	{"m-send-conf", 0x81},
	{"m-notification-ind", 0x82},
	{"m-notifyresp-ind", 0x83},
	{"m-retrieve-conf", 0x84},
	{"m-acknowledge-ind", 0x85},
	{"m-delivery-ind", 0x86},
	{"m-read-rec-ind", 0x87},
	{"m-read-orig-ind", 0x88},
}

var messageClasses = enumTable{
	{"Personal", 0x80},
	{"Advertisement", 0x81},
	{"Informational", 0x82},
	{"Auto", 0x83},
}

var priorities = enumTable{
	{"Low", 0x80},
	{"Normal", 0x81},
	{"High", 0x82},
}

var yesNo = enumTable{
	{"Yes", 0x80},
	{"No", 0x81},
}

var statuses = enumTable{
	{"Expired", 0x80},
	{"Retrieved", 0x81},
	{"Rejected", 0x82},
	{"Deferred", 0x83},
	{"Unrecognised", 0x84},
	{"Indeterminate", 0x85},
	{"Forwarded", 0x86},
	{"Unreachable", 0x87},
}

var senderVisibilities = enumTable{
	{"Hide", 0x80},
	{"Show", 0x81},
}

var readStatuses = enumTable{
	{"Read", 0x80},
	{"Deleted-without-being-read", 0x81},
}

// Response status codes are sparse (0x80-0x88, 0xc0-0xc4, 0xe0-0xeb), so
// they use a plain search.
var responseStatuses = []namedCode{
	{"Ok", 0x80},
	{"Error-unspecified", 0x81},
	{"Error-service-denied", 0x82},
	{"Error-message-format-corrupt", 0x83},
	{"Error-sending-address-unresolved", 0x84},
	{"Error-message-not-found", 0x85},
	{"Error-network-problem", 0x86},
	{"Error-content-not-accepted", 0x87},
	{"Error-unsupported-message", 0x88},
	{"Error-transient-failure", 0xc0},
	{"Error-transient-sending-address-unresolved", 0xc1},
	{"Error-transient-message-not-found", 0xc2},
	{"Error-transient-network-problem", 0xc3},
	{"Error-transient-partial-success", 0xc4},
	{"Error-permanent-failure", 0xe0},
	{"Error-permanent-service-denied", 0xe1},
	{"Error-permanent-message-format-corrupt", 0xe2},
	{"Error-permanent-sending-address-unresolved", 0xe3},
	{"Error-permanent-message-not-found", 0xe4},
	{"Error-permanent-content-not-accepted", 0xe5},
	{"Error-permanent-reply-charging-limitations-not-met", 0xe6},
	{"Error-permanent-reply-charging-request-not-accepted", 0xe7},
	{"Error-permanent-reply-charging-forwarding-denied", 0xe8},
	{"Error-permanent-reply-charging-not-supported", 0xe9},
	{"Error-permanent-address-hiding-not-supported", 0xea},
	{"Error-permanent-lacking-prepaid", 0xeb},
}
