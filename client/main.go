package main

import (
	"encoding/json"
	"errors"
	"flag"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/network"
)

// writer serializes writes; the bot replies from the read loop while the
// main loop sends heartbeats.
type writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// send formats and sends a message to the WebSocket server.
func (w *writer) send(msgID uint16, payload interface{}) error {
	data := []byte("{}")
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return err
		}
	}
	packet, err := network.Encode(msgID, data)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "bot", "display name")
	pick := flag.Bool("pick", false, "pick the first waiting player instead of waiting")
	flag.Parse()

	logger.Init("info", true)
	defer logger.Sync()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "name=" + url.QueryEscape(*name)}
	logger.Log.Infof("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	w := &writer{conn: c}
	bot := NewBot(*name, *pick, w.send, rand.New(rand.NewSource(time.Now().UnixNano())))

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Log.Infof("Read error: %v", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				logger.Log.Warnf("Received invalid packet of size %d", len(message))
				continue
			}
			if err := bot.Handle(packet); err != nil {
				if !errors.Is(err, errGameOver) {
					logger.Log.Errorf("Bot stopped: %v", err)
				}
				return
			}
		}
	}()

	if err := bot.Begin(); err != nil {
		logger.Log.Fatalf("Write error: %v", err)
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := w.send(network.MsgTypeHeartbeat, nil); err != nil {
				logger.Log.Infof("Write error: %v", err)
				return
			}
		case <-interrupt:
			logger.Log.Info("Interrupt received, closing connection.")
			w.mu.Lock()
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			w.mu.Unlock()
			if err != nil {
				logger.Log.Infof("Write close error: %v", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
