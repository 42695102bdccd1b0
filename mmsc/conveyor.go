// Package mmsc moves MMS PDUs to and from a carrier relay (MMSC).
package mmsc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/psanford/gsmd/internal/logging"
	"github.com/psanford/gsmd/mms"
)

// MaxPDUSize bounds the size of a fetched or returned PDU.
const MaxPDUSize = 4 << 20

// Conveyor carries encoded PDUs. Fetch downloads a message from the
// content location of a notification; Send posts a PDU to the relay and
// returns its answer.
type Conveyor interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
	Send(ctx context.Context, pdu []byte) ([]byte, error)
}

// HTTPError is a non-2xx answer from the relay.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mmsc: http status %s", e.Status)
}

// HTTPConveyor is a Conveyor over plain HTTP, optionally through the
// carrier's WAP proxy.
type HTTPConveyor struct {
	relay  string
	client *http.Client
	log    *zap.Logger
}

type HTTPOptions struct {
	RelayURL string
	Proxy    string
	Timeout  time.Duration
	Log      *zap.Logger
}

func NewHTTPConveyor(opts HTTPOptions) (*HTTPConveyor, error) {
	if _, err := url.Parse(opts.RelayURL); err != nil || opts.RelayURL == "" {
		return nil, fmt.Errorf("mmsc: relay url %q is invalid", opts.RelayURL)
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		pu, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("mmsc: proxy: %w", err)
		}
		tr.Proxy = http.ProxyURL(pu)
	}
	return &HTTPConveyor{
		relay:  opts.RelayURL,
		client: &http.Client{Transport: tr, Timeout: opts.Timeout},
		log:    logging.OrNop(opts.Log),
	}, nil
}

func (c *HTTPConveyor) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mms.PDUContentType)
	body, err := c.do(req)
	if err != nil {
		c.log.Error("fetch failed", zap.String("url", location), zap.Error(err))
		return nil, err
	}
	c.log.Info("fetched", zap.String("url", location), zap.Int("bytes", len(body)))
	return body, nil
}

func (c *HTTPConveyor) Send(ctx context.Context, pdu []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relay, bytes.NewReader(pdu))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mms.PDUContentType)
	req.Header.Set("Accept", mms.PDUContentType)
	body, err := c.do(req)
	if err != nil {
		c.log.Error("post failed", zap.String("url", c.relay), zap.Error(err))
		return nil, err
	}
	c.log.Info("posted", zap.String("url", c.relay), zap.Int("bytes", len(pdu)), zap.Int("response_bytes", len(body)))
	return body, nil
}

func (c *HTTPConveyor) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxPDUSize))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDUSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxPDUSize {
		return nil, fmt.Errorf("mmsc: response larger than %d bytes", MaxPDUSize)
	}
	return body, nil
}
