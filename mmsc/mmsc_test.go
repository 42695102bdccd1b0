package mmsc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/psanford/gsmd/mms"
)

type fakeBearer struct {
	up, down int
}

func (b *fakeBearer) Up(context.Context) error   { b.up++; return nil }
func (b *fakeBearer) Down(context.Context) error { b.down++; return nil }

func newConveyor(t *testing.T, srv *httptest.Server) *HTTPConveyor {
	t.Helper()
	c, err := NewHTTPConveyor(HTTPOptions{RelayURL: srv.URL + "/mms"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func marshal(t *testing.T, msg *mms.Message) []byte {
	t.Helper()
	b, err := mms.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func sendConf(t *testing.T, txid string, status mms.ResponseStatus) []byte {
	var conf mms.Message
	conf.SetMessageType(mms.MSendConf)
	conf.SetTransactionID(txid)
	conf.SetVersion(1, 2)
	conf.Headers.Add(mms.FieldResponseStatus, status)
	if status.Ok() {
		conf.Headers.Add(mms.FieldMessageID, mms.TextOf("mid-42"))
	} else {
		conf.Headers.Add(mms.FieldResponseText, mms.NewEncodedString("denied"))
	}
	return marshal(t, &conf)
}

func TestHTTPConveyor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != mms.PDUContentType {
			t.Errorf("accept %q", r.Header.Get("Accept"))
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/msg/1":
			w.Write([]byte("pdu-bytes"))
		case r.Method == http.MethodPost && r.URL.Path == "/mms":
			if r.Header.Get("Content-Type") != mms.PDUContentType {
				t.Errorf("content type %q", r.Header.Get("Content-Type"))
			}
			body, _ := io.ReadAll(r.Body)
			w.Write(append([]byte("echo:"), body...))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newConveyor(t, srv)
	ctx := context.Background()

	got, err := c.Fetch(ctx, srv.URL+"/msg/1")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pdu-bytes" {
		t.Fatalf("fetch returned %q", got)
	}

	got, err = c.Send(ctx, []byte("req"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "echo:req" {
		t.Fatalf("send returned %q", got)
	}

	_, err = c.Fetch(ctx, srv.URL+"/missing")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("got %v want 404", err)
	}
}

func TestNewHTTPConveyorInvalid(t *testing.T) {
	if _, err := NewHTTPConveyor(HTTPOptions{}); err == nil {
		t.Fatal("expected error for empty relay url")
	}
	if _, err := NewHTTPConveyor(HTTPOptions{RelayURL: "http://mmsc", Proxy: "http://[::1"}); err == nil {
		t.Fatal("expected error for bad proxy")
	}
}

func TestClientSend(t *testing.T) {
	tests := []struct {
		name    string
		status  mms.ResponseStatus
		wantErr error
		wantLog string
	}{
		{"accepted", mms.StatusOk, nil, "sent"},
		{"rejected", mms.StatusErrorServiceDenied, ErrRejected, "send rejected"},
		{"permanent", mms.StatusErrorPermanentServiceDenied, ErrRejected, "send rejected"},
		{"transient", mms.StatusErrorTransientNetworkProblem, ErrTransient, "send deferred by relay"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				req, err := mms.Unmarshal(body)
				if err != nil {
					t.Errorf("relay could not decode request: %v", err)
					http.Error(w, "bad pdu", http.StatusBadRequest)
					return
				}
				if mt, _ := req.MessageType(); mt != mms.MSendReq {
					t.Errorf("relay got %s", mt)
				}
				if len(req.Parts) != 1 || req.Parts[0].Data.String() != "hello" {
					t.Errorf("relay got %d parts", len(req.Parts))
				}
				w.Header().Set("Content-Type", mms.PDUContentType)
				w.Write(sendConf(t, req.TransactionID(), tc.status))
			}))
			defer srv.Close()

			bearer := &fakeBearer{}
			core, logs := observer.New(zap.InfoLevel)
			c := NewClient(newConveyor(t, srv), bearer, zap.New(core))
			res, err := c.Send(context.Background(), mms.SendRequest{
				To:            []string{"+15551234"},
				TransactionID: "tx-1",
				Parts:         []mms.PartSpec{{MediaType: "text/plain", Data: []byte("hello")}},
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v want %v", err, tc.wantErr)
			}
			if !tc.status.Ok() && !errors.Is(err, ErrRejected) {
				t.Fatalf("got %v want ErrRejected", err)
			}
			if got := errors.Is(err, ErrTransient); got != tc.status.Transient() {
				t.Fatalf("transient %v for status %s", got, tc.status)
			}
			if n := logs.FilterMessage(tc.wantLog).Len(); n != 1 {
				t.Fatalf("%d %q log entries, have %v", n, tc.wantLog, logs.All())
			}
			want := &SendResult{TransactionID: "tx-1", Status: tc.status}
			if tc.status.Ok() {
				want.MessageID = "mid-42"
			} else {
				want.StatusText = "denied"
			}
			if diff := cmp.Diff(want, res); diff != "" {
				t.Fatalf("result mismatch (-want +got):\n%s", diff)
			}
			if bearer.up != 1 || bearer.down != 1 {
				t.Fatalf("bearer up %d down %d", bearer.up, bearer.down)
			}
		})
	}
}

func TestClientRetrieve(t *testing.T) {
	var conf mms.Message
	conf.SetMessageType(mms.MRetrieveConf)
	conf.SetTransactionID("abc")
	conf.SetVersion(1, 2)
	conf.Headers.Add(mms.FieldMessageID, mms.TextOf("mid-7"))
	conf.SetFrom("+15550000")
	if _, err := conf.AddPart("text/plain", []byte("hi there")); err != nil {
		t.Fatal(err)
	}
	pdu := marshal(t, &conf)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/abc":
			w.Write(pdu)
		case "/wrong":
			w.Write(sendConf(t, "abc", mms.StatusOk))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(newConveyor(t, srv), nil, nil)
	ctx := context.Background()

	msg, err := c.Retrieve(ctx, &mms.Indicator{Type: mms.MNotificationInd, TransactionID: "abc", ContentLocation: srv.URL + "/abc"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Borrowed() {
		t.Fatal("retrieved message still borrows the response body")
	}
	if msg.MessageID() != "mid-7" || len(msg.Parts) != 1 || msg.Parts[0].Data.String() != "hi there" {
		t.Fatalf("retrieved %q with %d parts", msg.MessageID(), len(msg.Parts))
	}

	_, err = c.Retrieve(ctx, &mms.Indicator{Type: mms.MNotificationInd, ContentLocation: srv.URL + "/wrong"})
	if !errors.Is(err, ErrUnexpectedPDU) {
		t.Fatalf("got %v want %v", err, ErrUnexpectedPDU)
	}

	_, err = c.Retrieve(ctx, &mms.Indicator{Type: mms.MDeliveryInd})
	if !errors.Is(err, ErrUnexpectedPDU) {
		t.Fatalf("delivery report: got %v want %v", err, ErrUnexpectedPDU)
	}
}

func TestClientAcknowledge(t *testing.T) {
	var got *mms.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		msg, err := mms.Unmarshal(body)
		if err != nil {
			t.Errorf("relay could not decode: %v", err)
			return
		}
		msg.Detach()
		got = msg
	}))
	defer srv.Close()

	c := NewClient(newConveyor(t, srv), nil, nil)
	ind := &mms.Indicator{Type: mms.MNotificationInd, TransactionID: "abc", ContentLocation: "http://x/abc"}
	if err := c.Acknowledge(context.Background(), ind, mms.StatusRetrieved); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("relay saw nothing")
	}
	if mt, _ := got.MessageType(); mt != mms.MNotifyrespInd || got.TransactionID() != "abc" {
		t.Fatalf("relay got %s %q", mt, got.TransactionID())
	}
	if v, _ := got.Headers.Get(mms.FieldStatus); v != mms.StatusRetrieved {
		t.Fatalf("status %v", v)
	}
}
