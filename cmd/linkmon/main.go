package main

import (
	"flag"
	"log"
	"strings"

	"github.com/robotalks/mculink/pkg/env"
	fx "github.com/robotalks/mculink/pkg/framework"
	"github.com/robotalks/mculink/pkg/telemetry"
)

var linkFilter = "+"

func init() {
	env.SetupFlags()
	flag.StringVar(&linkFilter, "link", linkFilter, "Link ID to watch, + for all")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := env.Default()
	if conf.MQTTBrokerURL == "" {
		log.Fatalln("MQTT broker URL required, use -mqtt or " + env.EnvMQTTURL)
	}
	q := conf.MustNewTelemetryQueue("linkmon")
	q.Sub(telemetry.StatsTopic(linkFilter), func(topic string, payload []byte) {
		stats, err := telemetry.DecodeLinkStats(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s @%s: %s", strings.TrimSuffix(topic, telemetry.StatsTopicSuffix),
			stats.Time().Format("15:04:05.000"), stats.String())
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	runner := fx.NewRunner().HandleSignals()
	<-runner.Context.Done()
}
