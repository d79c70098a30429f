package main

import (
	"flag"
	"log"

	"github.com/robotalks/mculink/pkg/env"
	fx "github.com/robotalks/mculink/pkg/framework"
)

var listenAddr string

func init() {
	env.SetupFlags()
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve links over websocket at address, e.g. :8080")
}

func main() {
	flag.Parse()
	conf := env.Default().MustValidate()
	dev := newDevice(conf)
	dev.telemetry = conf.MustNewTelemetryQueue("mcusim")

	runner := fx.NewRunner().HandleSignals()
	if listenAddr != "" {
		runner.Go(&wsServer{dev: dev, addr: listenAddr})
	} else {
		conn, desc := conf.MustOpenLink()
		runner.Go(&linkRunner{dev: dev, conn: conn, desc: desc})
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
