// Package bus publishes assistant events (transcripts, replies, state
// changes) to a websocket endpoint so dashboards or other shards can follow
// a session. Publishing is best effort: a dead bus never blocks the voice
// loop.
package bus

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"

	"log/slog"
)

type Event struct {
	Session  string    `json:"session"`
	Kind     string    `json:"kind"` // transcript, reply, intent, state
	Language string    `json:"language,omitempty"`
	Content  string    `json:"content"`
	Time     time.Time `json:"time"`
}

// Publisher holds one websocket connection and a session id that tags every
// event. Safe for use from a single goroutine, which is all the voice loop
// needs.
type Publisher struct {
	mu      sync.Mutex
	url     string
	session string
	conn    *websocket.Conn
	log     *slog.Logger
}

func Connect(url string, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to event bus", goerr.V("url", url))
	}

	session := uuid.NewString()
	log.Info("connected to event bus", "url", url, "session", session)

	return &Publisher{
		url:     url,
		session: session,
		conn:    conn,
		log:     log,
	}, nil
}

func (p *Publisher) Session() string { return p.session }

// Publish sends one event. On write failure it reconnects once and retries;
// if that also fails the event is dropped with a warning.
func (p *Publisher) Publish(kind, language, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := Event{
		Session:  p.session,
		Kind:     kind,
		Language: language,
		Content:  content,
		Time:     time.Now().UTC(),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("failed to encode event", "error", err)
		return
	}

	if err := p.conn.WriteMessage(websocket.TextMessage, data); err == nil {
		return
	}

	if err := p.reconnect(); err != nil {
		p.log.Warn("event dropped, bus unreachable", "kind", kind, "error", err)
		return
	}
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		p.log.Warn("event dropped after reconnect", "kind", kind, "error", err)
	}
}

func (p *Publisher) reconnect() error {
	p.conn.Close()

	conn, _, err := websocket.DefaultDialer.Dial(p.url, nil)
	if err != nil {
		return err
	}
	p.conn = conn
	p.log.Info("reconnected to event bus", "url", p.url)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.Close()
}
