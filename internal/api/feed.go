package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xtrntr/auction/internal/models"
	"go.uber.org/zap"
)

// Snapshotter provides the current ask book
type Snapshotter interface {
	Snapshot() []models.AskLevel
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Feed pushes ask book snapshots to websocket clients. It sends one on
// connect, one after every settlement and one per tick in Run.
type Feed struct {
	source   Snapshotter
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewFeed creates a feed reading snapshots from source
func NewFeed(source Snapshotter, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		source: source,
		log:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the peer
// goes away. Incoming messages are ignored.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{conn: conn}
	data, err := f.snapshot()
	if err == nil {
		err = client.send(data)
	}
	if err != nil {
		f.log.Warn("initial snapshot failed", zap.Error(err))
		conn.Close()
		return
	}

	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.remove(client)
}

// Broadcast sends the current book to every client, dropping those that fail
func (f *Feed) Broadcast() {
	data, err := f.snapshot()
	if err != nil {
		f.log.Error("failed to marshal ask book", zap.Error(err))
		return
	}

	f.mu.RLock()
	var failed []*wsClient
	for client := range f.clients {
		if err := client.send(data); err != nil {
			f.log.Debug("dropping websocket client", zap.Error(err))
			failed = append(failed, client)
		}
	}
	f.mu.RUnlock()

	for _, client := range failed {
		f.remove(client)
	}
}

// Record broadcasts after a settlement, so a Feed can sit in the journal.
func (f *Feed) Record(ctx context.Context, s models.Settlement) error {
	f.Broadcast()
	return nil
}

// Run broadcasts every interval until ctx is done, then closes all clients.
// A non-positive interval only waits for ctx.
func (f *Feed) Run(ctx context.Context, interval time.Duration) error {
	defer f.Close()
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.Broadcast()
		}
	}
}

// Close disconnects every client
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for client := range f.clients {
		client.conn.Close()
		delete(f.clients, client)
	}
}

func (f *Feed) numClients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) remove(client *wsClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[client]; ok {
		client.conn.Close()
		delete(f.clients, client)
	}
}

func (f *Feed) snapshot() ([]byte, error) {
	return json.Marshal(models.AsksResult{Asks: f.source.Snapshot()})
}
