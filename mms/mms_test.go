package mms

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var notificationInd = []byte{
	0x8c, 0x82,
	0x98, 'a', 'b', 'c', 0x00,
	0x8d, 0x92,
	0x89, 0x15, 0x80, '+', '1', '5', '5', '5', '1', '2', '3', '4', '/', 'T', 'Y', 'P', 'E', '=', 'P', 'L', 'M', 'N', 0x00,
	0x8a, 0x80,
	0x8e, 0x02, 0x0b, 0xb8,
	0x88, 0x05, 0x81, 0x03, 0x01, 0x51, 0x80,
	0x83, 'h', 't', 't', 'p', ':', '/', '/', 'm', 'm', 's', 'c', '/', 'a', 'b', 'c', 0x00,
}

func TestParseNotification(t *testing.T) {
	msg, err := Unmarshal(notificationInd)
	if err != nil {
		t.Fatal(err)
	}

	expect := `X-Mms-Message-Type=m-notification-ind
X-Mms-Transaction-Id=abc
X-Mms-MMS-Version=1.2
From=+15551234/TYPE=PLMN
X-Mms-Message-Class=Personal
X-Mms-Message-Size=3000
X-Mms-Expiry=+86400
X-Mms-Content-Location=http://mmsc/abc
`
	if diff := cmp.Diff(expect, msg.Headers.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if len(msg.Parts) != 0 {
		t.Fatalf("notification has %d parts", len(msg.Parts))
	}

	ind, err := NewIndicator(msg)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := Indicator{
		Type:            MNotificationInd,
		TransactionID:   "abc",
		ContentLocation: "http://mmsc/abc",
		From:            "+15551234",
		Size:            3000,
		Class:           "Personal",
		Expiry:          &Expiry{Seconds: 86400},
	}
	if diff := cmp.Diff(&want, ind); diff != "" {
		t.Fatalf("indicator mismatch (-want +got):\n%s", diff)
	}
	if !ind.Expiry.At(now).Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expiry at %v", ind.Expiry.At(now))
	}

	out, err := Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(notificationInd, out) {
		t.Fatalf("re-encode differs:\n% x\n% x", notificationInd, out)
	}
}

func TestMessageDump(t *testing.T) {
	msg, err := Unmarshal(retrieveConfPacket())
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := msg.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		"X-Mms-Message-Type: m-retrieve-conf\n",
		"Content-Type: application/vnd.wap.multipart.mixed\n",
		"Part 0: text/plain, 5 bytes\n",
		"  Content-ID: <a>\n",
		"  Content-Location: a.txt\n",
		"Part 1: image/jpeg, 2 bytes\n",
		"  extra headers: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestNotifyRespHasNoContentType(t *testing.T) {
	var msg Message
	msg.SetMessageType(MNotifyrespInd)
	msg.SetTransactionID("x")
	msg.SetVersion(1, 2)
	msg.Headers.Add(FieldStatus, StatusRetrieved)

	got, err := Marshal(&msg)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x8c, 0x83,
		0x98, 'x', 0x00,
		0x8d, 0x92,
		0x95, 0x81,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x want % x", got, want)
	}

	back, err := Unmarshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := back.Headers.Get(FieldContentType); ok {
		t.Fatal("m-notifyresp-ind decoded with a Content-Type")
	}
	if len(back.Parts) != 0 {
		t.Fatalf("%d parts", len(back.Parts))
	}
}

func TestResponseStatusClasses(t *testing.T) {
	tests := []struct {
		status    ResponseStatus
		ok        bool
		transient bool
	}{
		{StatusOk, true, false},
		{StatusErrorServiceDenied, false, false},
		{StatusErrorTransientFailure, false, true},
		{StatusErrorTransientNetworkProblem, false, true},
		{StatusErrorPermanentFailure, false, false},
		{StatusErrorPermanentServiceDenied, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			if tc.status.Ok() != tc.ok || tc.status.Transient() != tc.transient {
				t.Fatalf("ok %v transient %v", tc.status.Ok(), tc.status.Transient())
			}
		})
	}
}
