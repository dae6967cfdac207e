package matchhub

import (
	"time"

	"github.com/gorilla/websocket"
)

// Watcher is a read-only viewer connection. It receives the full match
// document after every change and sends nothing except pong frames.
type Watcher struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Receive chan []byte
	Close   chan error
}

func newWatcher(hub *Hub, conn *websocket.Conn) *Watcher {
	return &Watcher{
		Hub:     hub,
		Conn:    conn,
		Receive: make(chan []byte, 8),
		Close:   make(chan error, 1),
	}
}

func (w *Watcher) WriteEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		select {
		case w.Hub.LeaveWatcher <- w:
		case <-w.Hub.done:
		}
	}()
	for {
		select {
		case message, ok := <-w.Receive:
			_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = w.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := w.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = writer.Write(message)

			// Flush queued documents into the same websocket message.
			n := len(w.Receive)
			for i := 0; i < n; i++ {
				_, _ = writer.Write(newline)
				_, _ = writer.Write(<-w.Receive)
			}

			if err := writer.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case closeErr := <-w.Close:
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure,
				closeErr.Error())
			writer, err := w.Conn.NextWriter(websocket.CloseMessage)
			if err != nil {
				return
			}
			_, _ = writer.Write(closeMessage)
			_ = writer.Close()
			return
		}
	}
}

// ReadUntilClose drains the connection so pongs and close frames are
// processed; any inbound text from a viewer is discarded.
func (w *Watcher) ReadUntilClose() {
	defer func() {
		select {
		case w.Hub.LeaveWatcher <- w:
		case <-w.Hub.done:
		}
		_ = w.Conn.Close()
	}()

	w.Conn.SetReadLimit(maxMessageSize)
	_ = w.Conn.SetReadDeadline(time.Now().Add(pongWait))
	w.Conn.SetPongHandler(func(string) error {
		_ = w.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := w.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
