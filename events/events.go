// events/events.go
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/wfunc/blockduel/logger"
)

const (
	SubjectMatchStarted = "match.started"
	SubjectMatchEnded   = "match.ended"
)

// MatchStarted is published when a picker pairs with a waiting player.
type MatchStarted struct {
	RoomID    string    `json:"roomId"`
	Players   [2]string `json:"players"`
	StartedAt time.Time `json:"startedAt"`
}

// MatchEnded is published after a loss is reported.
type MatchEnded struct {
	RoomID   string    `json:"roomId"`
	Winner   string    `json:"winner"`
	Loser    string    `json:"loser"`
	EndedAt  time.Time `json:"endedAt"`
	Duration float64   `json:"durationSeconds"`
}

// Publisher sends match events to an external feed.
type Publisher interface {
	Publish(subject string, event interface{}) error
	Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, interface{}) error { return nil }
func (NopPublisher) Close()                            {}

// NATSPublisher publishes JSON events under prefix.subject.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// Connect dials the NATS server at url.
func Connect(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("blockduel-server"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warnf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *NATSPublisher) Publish(subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.Subject(subject), data)
}

// Close flushes pending events and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
