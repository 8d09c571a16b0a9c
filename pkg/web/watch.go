package web

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// readTimeout resets on every message; the server pings well inside it
const readTimeout = 120 * time.Second

// Watch connects to a /ws/pose endpoint and calls fn for every pose message
// until ctx is cancelled or the connection fails. Non-pose messages are skipped.
func Watch(ctx context.Context, url string, fn func(PoseMessage)) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer ws.Close()

	// Unblock ReadMessage on cancel
	stop := context.AfterFunc(ctx, func() {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ws.Close()
	})
	defer stop()

	for {
		ws.SetReadDeadline(time.Now().Add(readTimeout))

		_, message, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read pose: %w", err)
		}

		var msg PoseMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type != "pose" {
			continue
		}
		fn(msg)
	}
}
