package mms

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseHeaders(t *testing.T) {
	text := `
# outgoing defaults
X-Mms-Message-Class = Personal
priority=High
Subject=weekly report
X-Mms-Expiry=+86400
Delivery-Report=yes
Cc=alice@example.com
Date=2023-11-14T22:13:20Z
`
	got, err := ParseHeaders(text)
	if err != nil {
		t.Fatal(err)
	}
	want := Headers{
		{ID: FieldMessageClass.ID(), Value: ClassPersonal},
		{ID: FieldPriority.ID(), Value: PriorityHigh},
		{ID: FieldSubject.ID(), Value: NewEncodedString("weekly report")},
		{ID: FieldExpiry.ID(), Value: Expiry{Seconds: 86400}},
		{ID: FieldDeliveryReport.ID(), Value: Yes},
		{ID: FieldCc.ID(), Value: ParseAddress("alice@example.com")},
		{ID: FieldDate.ID(), Value: Date(1700000000)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeadersErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		line    string
	}{
		{"no equals", "Subject", ErrInvalidData, "line 1"},
		{"unknown name", "\nX-Foo=bar", ErrUnknownField, "line 2"},
		{"bad enum", "Priority=Urgent", ErrLookupFailed, "line 1"},
		{"bad integer", "X-Mms-Message-Size=lots", ErrInvalidValue, "line 1"},
		{"unsupported kind", "X-Mms-Previously-Sent-By=x", ErrUnsupported, "line 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHeaders(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v want %v", err, tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.line) {
				t.Fatalf("error %q does not name %s", err, tc.line)
			}
		})
	}
}

func TestDumpParseRoundTrip(t *testing.T) {
	var msg Message
	msg.SetMessageType(MSendReq)
	msg.SetTransactionID("abc-123")
	msg.SetVersion(1, 2)
	msg.SetFrom("")
	msg.AddTo("+15551234")
	msg.AddTo("10.0.0.1/TYPE=IPv4")
	msg.SetSubject("héllo")
	msg.Headers.Add(FieldMessageClass, ClassInformational)
	msg.Headers.Add(FieldMessageSize, LongInteger(3000))
	msg.Headers.Add(FieldExpiry, Expiry{Absolute: true, Seconds: 1700000000})
	msg.Headers.Add(FieldSenderVisibility, Show)
	msg.Headers.Add(FieldResponseStatus, StatusErrorNetworkProblem)
	ct, err := ParseMediaType(`application/vnd.wap.multipart.related; type=application/smil; start="<smil>"`)
	if err != nil {
		t.Fatal(err)
	}
	msg.SetContentType(ct)

	text := msg.Headers.String()
	got, err := ParseHeaders(text)
	if err != nil {
		t.Fatalf("%v\n%s", err, text)
	}
	if diff := cmp.Diff(msg.Headers, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s\n%s", diff, text)
	}
}

func TestDumpSkipsOpaque(t *testing.T) {
	h := Headers{
		{ID: FieldPreviouslySentBy.ID(), Value: Opaque{Own([]byte{0x01, 0x02})}},
		{ID: FieldSubject.ID(), Value: NewEncodedString("x")},
	}
	want := "# X-Mms-Previously-Sent-By=0x0102\nSubject=x\n"
	if got := h.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if _, err := ParseHeaders(want); err != nil {
		t.Fatal(err)
	}
}

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		in   string
		want *ContentType
	}{
		{
			in:   "image/jpeg",
			want: &ContentType{Media: MediaImageJPEG},
		},
		{
			in:   "application/x-custom",
			want: &ContentType{Media: TextOf("application/x-custom")},
		},
		{
			in: "text/plain; charset=utf-8",
			want: &ContentType{
				Media:  MediaTextPlain,
				Params: []Parameter{{Typed: true, Code: CharsetParam, Value: CharsetUTF8}},
			},
		},
		{
			in: `image/png name="my photo.png", q=0.5`,
			want: &ContentType{
				Media: MediaImagePNG,
				Params: []Parameter{
					{Typed: true, Code: DepNameParam, Value: TextOf("my photo.png")},
					{Typed: true, Code: QParam, Value: QValue(500)},
				},
			},
		},
		{
			in: "application/x-custom; foo=bar; size=12; x-n=7",
			want: &ContentType{
				Media: TextOf("application/x-custom"),
				Params: []Parameter{
					{Token: OwnString("foo"), Value: TextOf("bar")},
					{Typed: true, Code: SizeParam, Value: ShortInteger(12)},
					{Token: OwnString("x-n"), Value: ShortInteger(7)},
				},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMediaType(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}

			again, err := ParseMediaType(got.String())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Fatalf("String did not round trip %q (-want +got):\n%s", got, diff)
			}
		})
	}

	for _, bad := range []string{"", "text/plain; charset", "text/plain; q=2"} {
		if _, err := ParseMediaType(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}
