package matchhub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// Scorer is the lock-holding admin's scoring connection.
type Scorer struct {
	Hub     *Hub
	Conn    *websocket.Conn
	AdminID string
	Receive chan []byte
	Close   chan error
}

func newScorer(adminID string, hub *Hub, conn *websocket.Conn) *Scorer {
	return &Scorer{
		Hub:     hub,
		Conn:    conn,
		AdminID: adminID,
		Receive: make(chan []byte, 8),
		Close:   make(chan error, 1),
	}
}

func (s *Scorer) WriteEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		select {
		case s.Hub.LeaveScorer <- s:
		case <-s.Hub.done:
		}
	}()
	for {
		select {
		case msg, ok := <-s.Receive:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := s.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			_, _ = writer.Write(msg)

			for i := 0; i < len(s.Receive); i++ {
				_, _ = writer.Write(newline)
				_, _ = writer.Write(<-s.Receive)
			}

			if err := writer.Close(); err != nil {
				_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case closeErr := <-s.Close:
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure,
				closeErr.Error())
			writer, err := s.Conn.NextWriter(websocket.CloseMessage)
			if err != nil {
				return
			}
			_, _ = writer.Write(closeMessage)
			_ = writer.Close()
			return
		}
	}
}

func (s *Scorer) ReadEvents() {
	defer func() {
		select {
		case s.Hub.LeaveScorer <- s:
		case <-s.Hub.done:
		}
		_ = s.Conn.Close()
	}()

	s.Conn.SetReadLimit(maxMessageSize)
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, bytes, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.Hub.Errors <- err
			}
			return
		}

		var genericEvent GenericEvent
		if err := json.Unmarshal(bytes, &genericEvent); err != nil {
			s.reject(ErrEventParseFailed)
			continue
		}

		event, err := genericEvent.parseEvent()
		if err != nil {
			s.reject(err)
			continue
		}

		s.Hub.Events <- event
	}
}

// reject answers a malformed message on this connection only, without
// round-tripping through the hub loop.
func (s *Scorer) reject(err error) {
	msg, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return
	}
	select {
	case s.Receive <- msg:
	default:
	}
}
