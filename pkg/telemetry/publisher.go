package telemetry

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/mculink/pkg/framework"
	"github.com/robotalks/mculink/pkg/link"
)

// DefaultPublishInterval is the minimum interval between two publishes.
const DefaultPublishInterval = time.Second

// StatsTopicSuffix is appended to the link ID to form the stats topic.
const StatsTopicSuffix = "/stats"

// StatsSource provides link counters.
type StatsSource interface {
	Stats() link.Stats
}

// StatsTopic returns the topic stats of linkID are published to.
func StatsTopic(linkID string) string {
	return linkID + StatsTopicSuffix
}

// Publisher periodically publishes stats of a link when they change.
type Publisher struct {
	Queue    *Queue
	LinkID   string
	Source   StatsSource
	Interval time.Duration

	last      link.Stats
	published bool
	lastTime  time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(q *Queue, linkID string, src StatsSource) *Publisher {
	return &Publisher{Queue: q, LinkID: linkID, Source: src, Interval: DefaultPublishInterval}
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "telemetry"
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(l *fx.Loop) {
	l.AddPoller(p)
	l.AddRunnable(p)
}

// Run implements Runnable. It connects the Queue and keeps it connected
// until ctx is done. A broker failure never stops the link.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	go func() {
		if token.Wait(); token.Error() != nil {
			glog.Errorf("telemetry connect error: %v", token.Error())
		}
	}()
	<-ctx.Done()
	return p.Queue.Close()
}

// Poll implements Poller.
func (p *Publisher) Poll(now time.Time) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	if p.published && now.Sub(p.lastTime) < interval {
		return nil
	}
	stats := p.Source.Stats()
	if p.published && stats == p.last {
		return nil
	}
	payload, err := proto.Marshal(NewLinkStats(p.LinkID, now, stats))
	if err != nil {
		return err
	}
	p.last, p.lastTime, p.published = stats, now, true
	glog.V(2).Infof("publish stats %s: %+v", p.LinkID, stats)
	p.Queue.Pub(StatsTopic(p.LinkID), payload)
	return nil
}
