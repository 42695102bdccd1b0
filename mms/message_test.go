package mms

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/psanford/gsmd/sbuf"
)

func cat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// retrieve-conf carrying two parts: text/plain with Content-ID and
// Content-Location part headers, and image/jpeg followed by bytes that
// are not valid headers.
func retrieveConfPacket() []byte {
	return cat(
		[]byte{0x8c, 0x84},
		[]byte{0x98}, []byte("t\x00"),
		[]byte{0x8d, 0x92},
		[]byte{0x84, 0xa3},
		[]byte{0x02},
		[]byte{0x0d, 0x05, 0x83},
		[]byte{0xc0}, []byte("<a>\x00"),
		[]byte{0x8e}, []byte("a.txt\x00"),
		[]byte("hello"),
		[]byte{0x04, 0x02, 0x9e, 0x01, 0x02, 0x03},
		[]byte{0xff, 0xd8},
	)
}

func sendReq(t *testing.T) *Message {
	t.Helper()
	var msg Message
	msg.SetMessageType(MSendReq)
	msg.SetTransactionID("T1")
	msg.SetVersion(1, 2)
	msg.SetDeliveryReport(true)
	msg.SetFrom("+15550001")
	msg.AddTo("+15550002")
	msg.AddTo("bob@example.com")
	msg.SetSubject("héllo")
	msg.Headers.Add(FieldPriority, PriorityHigh)
	msg.Headers.Add(FieldExpiry, Expiry{Seconds: 3600})
	msg.Headers.Add(FieldDate, Date(1700000000))

	smil, err := msg.AddPart("application/smil", []byte("<smil/>"))
	if err != nil {
		t.Fatal(err)
	}
	smil.Headers.Add(WSPContentID, TextOf("<smil>"))
	if _, err := msg.AddPart("text/plain; charset=utf-8", []byte("hi")); err != nil {
		t.Fatal(err)
	}
	if _, err := msg.AddPart("image/jpeg; name=a.jpg", []byte{0xff, 0xd8, 0xff}); err != nil {
		t.Fatal(err)
	}
	return &msg
}

func TestRoundTrip(t *testing.T) {
	msg := sendReq(t)

	packet, err := Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Unmarshal(packet)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Headers) != len(msg.Headers)+1 {
		t.Fatalf("got %d headers want %d", len(got.Headers), len(msg.Headers)+1)
	}
	if diff := cmp.Diff(msg.Headers, got.Headers[:len(got.Headers)-1]); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	last := got.Headers[len(got.Headers)-1]
	if last.ID != FieldContentType.ID() {
		t.Fatalf("last header is %s, want Content-Type", last.FieldName())
	}
	if got.ContentType().MediaName() != "application/vnd.wap.multipart.mixed" {
		t.Fatalf("default content type %q", got.ContentType().MediaName())
	}

	if len(got.Parts) != len(msg.Parts) {
		t.Fatalf("got %d parts want %d", len(got.Parts), len(msg.Parts))
	}
	for i := range msg.Parts {
		want, have := &msg.Parts[i], &got.Parts[i]
		if diff := cmp.Diff(want.ContentType(), have.ContentType()); diff != "" {
			t.Errorf("part %d content type mismatch (-want +got):\n%s", i, diff)
		}
		if !bytes.Equal(want.Data.Bytes(), have.Data.Bytes()) {
			t.Errorf("part %d data: got % x want % x", i, have.Data.Bytes(), want.Data.Bytes())
		}
	}

	extra, err := got.Parts[0].DecodeExtraHeaders()
	if err != nil {
		t.Fatal(err)
	}
	wantExtra := Headers{{ID: WSPContentID.ID(), Value: TextOf("<smil>")}}
	if diff := cmp.Diff(wantExtra, extra); diff != "" {
		t.Fatalf("extra headers mismatch (-want +got):\n%s", diff)
	}
	if got.Parts[2].Filename() != "a.jpg" {
		t.Fatalf("filename %q", got.Parts[2].Filename())
	}

	again, err := Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packet, again) {
		t.Fatalf("re-encode differs:\n% x\n% x", packet, again)
	}
}

func TestEncodeDoesNotModifyMessage(t *testing.T) {
	msg := sendReq(t)
	msg.SetContentType(&ContentType{Media: MediaWAPMultipartRelated})
	before := msg.Headers.Clone()

	if _, err := Marshal(msg); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, msg.Headers); diff != "" {
		t.Fatalf("headers changed (-before +after):\n%s", diff)
	}
	if len(msg.Parts[0].Headers) != 2 {
		t.Fatalf("part headers changed: %d", len(msg.Parts[0].Headers))
	}
}

func TestEncodeRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		build   func(m *Message)
		wantErr error
	}{
		{
			name: "no message type",
			build: func(m *Message) {
				m.SetTransactionID("x")
				m.SetVersion(1, 2)
			},
			wantErr: ErrRequiredField,
		},
		{
			name: "no transaction id",
			build: func(m *Message) {
				m.SetMessageType(MSendReq)
				m.SetVersion(1, 2)
			},
			wantErr: ErrRequiredField,
		},
		{
			name: "no version",
			build: func(m *Message) {
				m.SetMessageType(MNotifyrespInd)
				m.SetTransactionID("x")
			},
			wantErr: ErrRequiredField,
		},
		{
			name: "delivery-ind without transaction id",
			build: func(m *Message) {
				m.SetMessageType(MDeliveryInd)
				m.SetVersion(1, 0)
				m.Headers.Add(FieldMessageID, TextOf("id"))
				m.Headers.Add(FieldStatus, StatusRetrieved)
			},
		},
		{
			name: "wrong value kind",
			build: func(m *Message) {
				m.SetMessageType(MNotifyrespInd)
				m.SetTransactionID("x")
				m.SetVersion(1, 2)
				m.Headers.Add(FieldStatus, TextOf("Retrieved"))
			},
			wantErr: ErrInvalidValue,
		},
		{
			name: "nil value",
			build: func(m *Message) {
				m.SetMessageType(MNotifyrespInd)
				m.SetTransactionID("x")
				m.SetVersion(1, 2)
				m.Headers.Add(FieldStatus, nil)
			},
			wantErr: ErrNoCodec,
		},
		{
			name: "part header in pdu header",
			build: func(m *Message) {
				m.SetMessageType(MNotifyrespInd)
				m.SetTransactionID("x")
				m.SetVersion(1, 2)
				m.Headers.Add(WSPContentLocation, TextOf("a.txt"))
			},
			wantErr: ErrInvalidValue,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var msg Message
			tc.build(&msg)

			buf := sbuf.New()
			buf.PutByte(0xaa)
			err := Encode(buf, &msg)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v want %v", err, tc.wantErr)
			}
			if buf.Len() != 1 {
				t.Fatalf("failed encode wrote %d bytes", buf.Len()-1)
			}
		})
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		wantErr error
	}{
		{"unknown field", []byte{0xff, 0x00}, ErrUnknownField},
		{"not a short int", []byte{0x41, 0x00}, ErrInvalidData},
		{"bad message type", []byte{0x8c, 0x99}, ErrLookupFailed},
		{"truncated text", []byte{0x98, 'a', 'b'}, sbuf.ErrEOS},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v want %v", err, tc.wantErr)
			}
		})
	}
}

func TestPartResync(t *testing.T) {
	packet := retrieveConfPacket()

	msg, err := Unmarshal(packet)
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Parts) != 2 {
		t.Fatalf("got %d parts", len(msg.Parts))
	}

	text := &msg.Parts[0]
	if text.ContentType().MediaName() != "text/plain" {
		t.Fatalf("part 0 media %q", text.ContentType().MediaName())
	}
	if text.Data.String() != "hello" {
		t.Fatalf("part 0 data %q", text.Data)
	}
	extra, err := text.DecodeExtraHeaders()
	if err != nil {
		t.Fatal(err)
	}
	wantExtra := Headers{
		{ID: WSPContentID.ID(), Value: TextOf("<a>")},
		{ID: WSPContentLocation.ID(), Value: TextOf("a.txt")},
	}
	if diff := cmp.Diff(wantExtra, extra); diff != "" {
		t.Fatalf("extra headers mismatch (-want +got):\n%s", diff)
	}
	if text.Filename() != "a.txt" {
		t.Fatalf("filename %q", text.Filename())
	}

	img := &msg.Parts[1]
	if img.ContentType().MediaName() != "image/jpeg" {
		t.Fatalf("part 1 media %q", img.ContentType().MediaName())
	}
	if !bytes.Equal(img.Data.Bytes(), []byte{0xff, 0xd8}) {
		t.Fatalf("part 1 data % x", img.Data.Bytes())
	}
	if !bytes.Equal(img.ExtraHeaders.Bytes(), []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("part 1 extra % x", img.ExtraHeaders.Bytes())
	}
	if _, err := img.DecodeExtraHeaders(); err == nil {
		t.Fatal("garbage extra headers decoded without error")
	}

	again, err := Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packet, again) {
		t.Fatalf("re-encode differs:\n% x\n% x", packet, again)
	}
}

func TestTruncatedBody(t *testing.T) {
	packet := retrieveConfPacket()

	_, err := Unmarshal(packet[:len(packet)-1])
	if !errors.Is(err, sbuf.ErrEOS) {
		t.Fatalf("got %v want %v", err, sbuf.ErrEOS)
	}

	// part count larger than the remaining data
	hdrEnd := bytes.IndexByte(packet, 0xa3) + 1
	bad := append(append([]byte{}, packet[:hdrEnd]...), 0x7f, 0x00)
	if _, err := Unmarshal(bad); !errors.Is(err, ErrBadLength) {
		t.Fatalf("part count: got %v want %v", err, ErrBadLength)
	}
}

func TestBorrowLifetime(t *testing.T) {
	buf := sbuf.FromBytes(retrieveConfPacket())
	msg, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !msg.Borrowed() {
		t.Fatal("decoded message does not borrow")
	}
	if err := msg.Validate(); err != nil {
		t.Fatal(err)
	}
	buf.Release()
	if err := msg.Validate(); !errors.Is(err, ErrSourceReleased) {
		t.Fatalf("after release: got %v want %v", err, ErrSourceReleased)
	}

	buf = sbuf.FromBytes(retrieveConfPacket())
	msg, err = Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	msg.Detach()
	buf.Release()
	if msg.Borrowed() {
		t.Fatal("detached message still borrows")
	}
	if err := msg.Validate(); err != nil {
		t.Fatal(err)
	}
	if msg.TransactionID() != "t" || msg.Parts[0].Data.String() != "hello" {
		t.Fatalf("detached payloads lost: %q %q", msg.TransactionID(), msg.Parts[0].Data)
	}
	if !msg.Parts[1].ExtraHeaders.Owned() {
		t.Fatal("extra headers not copied")
	}
}

func TestSinglePartBody(t *testing.T) {
	packet := cat(
		[]byte{0x8c, 0x84},
		[]byte{0x98}, []byte("t\x00"),
		[]byte{0x8d, 0x92},
		[]byte{0x84, 0x83},
		[]byte("hello"),
	)
	msg, err := Unmarshal(packet)
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.Parts) != 1 {
		t.Fatalf("got %d parts", len(msg.Parts))
	}
	if msg.Parts[0].ContentType().MediaName() != "text/plain" || msg.Parts[0].Data.String() != "hello" {
		t.Fatalf("part %s %q", msg.Parts[0].ContentType(), msg.Parts[0].Data)
	}

	again, err := Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(packet, again) {
		t.Fatalf("re-encode differs:\n% x\n% x", packet, again)
	}

	msg.Parts = append(msg.Parts, msg.Parts[0])
	if _, err := Marshal(msg); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("two parts under text/plain: got %v", err)
	}
}

func TestHeadersOps(t *testing.T) {
	var h Headers
	h.Add(FieldTo, ParseAddress("+1"))
	h.Add(FieldTo, ParseAddress("+2"))
	h.Set(FieldSubject, NewEncodedString("a"))
	h.Set(FieldSubject, NewEncodedString("b"))

	if h.Len() != 3 {
		t.Fatalf("len %d", h.Len())
	}
	if v, _ := h.Get(FieldTo); v.String() != "+2/TYPE=PLMN" {
		t.Fatalf("Get returned %s", v)
	}
	if n := len(h.GetAll(FieldTo)); n != 2 {
		t.Fatalf("GetAll returned %d", n)
	}
	if v, ok := h.Take(FieldTo); !ok || v.String() != "+2/TYPE=PLMN" {
		t.Fatalf("Take returned %v %v", v, ok)
	}
	h.Del(FieldTo)
	if _, ok := h.Get(FieldTo); ok {
		t.Fatal("To survived Del")
	}
	if h.text(FieldSubject) != "b" {
		t.Fatalf("subject %q", h.text(FieldSubject))
	}
}
