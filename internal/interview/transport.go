package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is one bidirectional message connection to the interview service.
type Transport interface {
	Send(msg ClientMessage) error
	// Receive blocks until the next server message or until the connection ends.
	Receive() (ServerMessage, error)
	Close() error
}

// ErrMalformedMessage is returned by Receive for a frame that is not a valid
// server message. The connection stays usable.
var ErrMalformedMessage = errors.New("malformed server message")

type Dialer func(ctx context.Context, url string) (Transport, error)

type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	once    sync.Once
}

// DialWebSocket connects to the interview service WebSocket endpoint.
func DialWebSocket(ctx context.Context, url string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Send(msg ClientMessage) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(msg)
}

func (t *wsTransport) Receive() (ServerMessage, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return ServerMessage{}, err
	}

	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return msg, nil
}

func (t *wsTransport) Close() error {
	var err error
	t.once.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second),
		)
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
