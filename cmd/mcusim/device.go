package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/mculink/pkg/env"
	fx "github.com/robotalks/mculink/pkg/framework"
	"github.com/robotalks/mculink/pkg/link"
	"github.com/robotalks/mculink/pkg/store"
	"github.com/robotalks/mculink/pkg/telemetry"
	"github.com/robotalks/mculink/pkg/transport"
)

// device answers requests against a simulated memory, one link at a time.
type device struct {
	conf      *env.Config
	mem       *store.MemStore
	telemetry *telemetry.Queue

	ctx  context.Context
	busy atomic.Bool
}

func newDevice(conf *env.Config) *device {
	return &device{
		conf: conf,
		mem:  store.NewMemStore(conf.StoreSize),
		ctx:  context.Background(),
	}
}

func (d *device) serve(ctx context.Context, conn transport.Conn, desc string) error {
	session := link.NewSession(d.mem, conn, d.conf.SessionOptions()...)
	loop := d.conf.NewLoop()
	loop.Add(link.NewPort(conn, session))
	if d.telemetry != nil {
		loop.Add(telemetry.NewPublisher(d.telemetry, d.conf.LinkID, session))
	}
	glog.Infof("serving %s", desc)
	err := loop.Run(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		err = nil
	}
	glog.Infof("%s closed, stats %+v", desc, session.Stats())
	return err
}

// linkRunner serves a link opened at startup.
type linkRunner struct {
	dev  *device
	conn transport.Conn
	desc string
}

func (r *linkRunner) Name() string {
	return "link"
}

func (r *linkRunner) Run(ctx context.Context) error {
	return r.dev.serve(ctx, r.conn, r.desc)
}

// handler serves websocket connections as links.
func (d *device) handler() http.Handler {
	return transport.WebSocketHandler(func(conn transport.Conn) {
		if !d.busy.CompareAndSwap(false, true) {
			glog.Warning("link busy, rejecting connection")
			return
		}
		defer d.busy.Store(false)
		if err := d.serve(d.ctx, conn, "websocket link"); err != nil {
			glog.Errorf("link error: %v", err)
		}
	})
}

// wsServer listens for websocket links.
type wsServer struct {
	dev  *device
	addr string
}

func (s *wsServer) Name() string {
	return "websocket"
}

func (s *wsServer) Run(ctx context.Context) error {
	s.dev.ctx = ctx
	mux := http.NewServeMux()
	mux.Handle("/link", s.dev.handler())
	srv := &http.Server{Addr: s.addr, Handler: mux}
	glog.Infof("listening on ws://%s/link", s.addr)
	return fx.RunInterruptible(ctx, srv.ListenAndServe, func() { srv.Close() })
}
