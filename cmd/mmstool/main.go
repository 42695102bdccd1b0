// Command mmstool inspects, builds, sends and fetches MMS PDUs.
//
//	mmstool dump [-headers] FILE
//	mmstool encode -headers FILE [-part TYPE=PATH]... [-push TID] -o OUT
//	mmstool send -config FILE -to NUMBER[,NUMBER] [-headers FILE] [-part TYPE=PATH]...
//	mmstool fetch -config FILE FILE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/psanford/gsmd/internal/config"
	"github.com/psanford/gsmd/internal/logging"
	"github.com/psanford/gsmd/mms"
	"github.com/psanford/gsmd/mmsc"
	"github.com/psanford/gsmd/store"
	"github.com/psanford/gsmd/wap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "dump":
		err = runDump(args, os.Stdout)
	case "encode":
		err = runEncode(args)
	case "send":
		err = runSend(args, os.Stdout)
	case "fetch":
		err = runFetch(args, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mmstool %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: mmstool dump|encode|send|fetch [flags] [args]\n")
}

// partList collects repeated -part TYPE=PATH flags. The media type may be
// omitted (-part PATH), in which case it is sniffed from the content.
type partList []mms.PartSpec

func (p *partList) String() string {
	var names []string
	for _, ps := range *p {
		names = append(names, ps.MediaType)
	}
	return strings.Join(names, ",")
}

func (p *partList) Set(s string) error {
	media, path, ok := strings.Cut(s, "=")
	if !ok {
		media, path = "", s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if media == "" {
		media = http.DetectContentType(data)
	}
	*p = append(*p, mms.PartSpec{MediaType: media, Data: data, ContentLocation: baseName(path)})
	return nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// readPDU loads a PDU from path, unwrapping a WAP push envelope when there
// is one.
func readPDU(path string) (*mms.Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if wap.IsMMSPush(b) {
		return wap.UnmarshalPushNotification(b)
	}
	return mms.Unmarshal(b)
}

func runDump(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	headersOnly := fs.Bool("headers", false, "print MMS headers as Name=Value lines only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one file")
	}

	msg, err := readPDU(fs.Arg(0))
	if err != nil {
		return err
	}
	if *headersOnly {
		return msg.Headers.Dump(w)
	}
	return msg.Dump(w)
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	headersPath := fs.String("headers", "", "file of Name=Value header lines")
	out := fs.String("o", "", "output file")
	pushTID := fs.Int("push", -1, "wrap in a WAP push with this transaction id")
	var parts partList
	fs.Var(&parts, "part", "body part as TYPE=PATH (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *headersPath == "" || *out == "" {
		return errors.New("-headers and -o are required")
	}

	text, err := os.ReadFile(*headersPath)
	if err != nil {
		return err
	}
	hdrs, err := mms.ParseHeaders(string(text))
	if err != nil {
		return err
	}
	msg := mms.Message{Headers: hdrs}
	for _, ps := range parts {
		p, err := msg.AddPart(ps.MediaType, ps.Data)
		if err != nil {
			return err
		}
		p.Headers.Add(mms.WSPContentLocation, mms.TextOf(ps.ContentLocation))
	}

	var pdu []byte
	if *pushTID >= 0 {
		pdu, err = wap.MarshalPushNotification(uint8(*pushTID), &msg)
	} else {
		pdu, err = mms.Marshal(&msg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(*out, pdu, 0o644)
}

type env struct {
	cfg   config.Config
	log   *zap.Logger
	store store.Store
}

func loadEnv(path string) (*env, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	log, _, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}

	var st store.Store
	if cfg.RedisAddr != "" {
		st = store.NewRedisStore(store.RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Log: log})
	} else {
		st = store.NewMemoryStore(log)
	}
	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) client() (*mmsc.Client, error) {
	if e.cfg.MMSCURL == "" {
		return nil, errors.New("mmsc_url is not configured")
	}
	conv, err := mmsc.NewHTTPConveyor(mmsc.HTTPOptions{
		RelayURL: e.cfg.MMSCURL,
		Proxy:    e.cfg.Proxy,
		Timeout:  e.cfg.Timeout,
		Log:      e.log,
	})
	if err != nil {
		return nil, err
	}
	return mmsc.NewClient(conv, nil, e.log), nil
}

func runSend(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file")
	to := fs.String("to", "", "comma separated recipients")
	headersPath := fs.String("headers", "", "file of extra Name=Value header lines")
	var parts partList
	fs.Var(&parts, "part", "body part as TYPE=PATH (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	req := mms.SendRequest{
		From:           e.cfg.PhoneNumber,
		Parts:          parts,
		DeliveryReport: e.cfg.DeliveryReport,
	}
	for _, r := range strings.Split(*to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			req.To = append(req.To, r)
		}
	}
	if *headersPath != "" {
		text, err := os.ReadFile(*headersPath)
		if err != nil {
			return err
		}
		req.ExtraHeaders = string(text)
	}

	c, err := e.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
	defer cancel()

	res, sendErr := c.Send(ctx, req)
	if res == nil {
		return sendErr
	}

	rec := &store.OutboxRecord{
		ID:         res.TransactionID,
		MessageID:  res.MessageID,
		To:         req.To,
		Sent:       time.Now().UTC(),
		Response:   res.Status.String(),
		State:      mms.DeliveryPending,
		SendReport: req.DeliveryReport,
	}
	if sendErr != nil {
		rec.State = mms.DeliveryError
	}
	if err := e.store.SaveOutbox(ctx, rec); err != nil {
		e.log.Error("save outbox", zap.Error(err))
	}

	fmt.Fprintf(w, "transaction %s: %s %s\n", res.TransactionID, res.Status, res.MessageID)
	return sendErr
}

func runFetch(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one notification file")
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	msg, err := readPDU(fs.Arg(0))
	if err != nil {
		return err
	}
	ind, err := mms.NewIndicator(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
	defer cancel()

	if ind.Type == mms.MDeliveryInd {
		if err := e.store.AppendReport(ctx, store.NewReport(ind)); err != nil {
			return err
		}
		if err := e.store.UpdateDeliveryStatus(ctx, ind.MessageID, ind.DeliveryState()); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		fmt.Fprintf(w, "delivery report %s: %s (%s)\n", ind.MessageID, ind.Status, ind.DeliveryState())
		return nil
	}

	c, err := e.client()
	if err != nil {
		return err
	}
	got, err := c.Retrieve(ctx, ind)
	if err != nil {
		return err
	}
	if err := e.store.SaveInbox(ctx, store.NewInboxRecord(got, time.Now())); err != nil {
		return err
	}
	if err := c.Acknowledge(ctx, ind, mms.StatusRetrieved); err != nil {
		e.log.Warn("acknowledge", zap.Error(err))
	}
	return got.Dump(w)
}
