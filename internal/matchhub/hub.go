package matchhub

import (
	"context"
	"encoding/json"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/jsonlog"
	"CricketScoreApi/internal/store"

	"github.com/gorilla/websocket"
)

type envelope map[string]any

// Hub coordinates one live match: a single scorer drives events, any number
// of watchers receive the full match document on every change. Events
// execute serially on the run loop, which is what keeps the
// read-compute-overwrite cycle race-free within one process.
type Hub struct {
	MatchID       string
	AllowedScorer string

	models data.Models
	logger *jsonlog.Logger
	feed   *store.Subscription

	scorers  map[*Scorer]bool
	Watchers map[*Watcher]bool

	Events       chan MatchEvent
	Errors       chan error
	JoinWatcher  chan *Watcher
	joinScorer   chan *Scorer
	LeaveWatcher chan *Watcher
	LeaveScorer  chan *Scorer

	onCompleted func(match *cricket.MatchData)
	done        chan struct{}
}

func newHub(matchID, allowedScorer string, models data.Models, logger *jsonlog.Logger,
	onCompleted func(match *cricket.MatchData)) *Hub {

	return &Hub{
		MatchID:       matchID,
		AllowedScorer: allowedScorer,
		models:        models,
		logger:        logger,
		feed:          models.Matches.Subscribe(matchID),
		scorers:       make(map[*Scorer]bool),
		Watchers:      make(map[*Watcher]bool),
		Events:        make(chan MatchEvent),
		Errors:        make(chan error),
		JoinWatcher:   make(chan *Watcher),
		joinScorer:    make(chan *Scorer),
		LeaveWatcher:  make(chan *Watcher),
		LeaveScorer:   make(chan *Scorer),
		onCompleted:   onCompleted,
		done:          make(chan struct{}),
	}
}

// JoinScorer registers a scoring connection. Only the admin recorded as the
// lock holder when the hub was started may score.
func (h *Hub) JoinScorer(adminID string, conn *websocket.Conn) error {
	if adminID != h.AllowedScorer {
		return ErrScorerNotAuthorized
	}

	scorer := newScorer(adminID, h, conn)
	select {
	case h.joinScorer <- scorer:
	case <-h.done:
		return ErrMatchCompleted
	}
	go scorer.ReadEvents()
	go scorer.WriteEvents()

	return nil
}

// JoinAsWatcher registers a read-only connection and starts its pumps. A
// retired hub refuses the join and closes the connection.
func (h *Hub) JoinAsWatcher(conn *websocket.Conn) *Watcher {
	watcher := newWatcher(h, conn)
	select {
	case h.JoinWatcher <- watcher:
	case <-h.done:
		_ = conn.Close()
		return nil
	}
	go watcher.WriteEvents()
	go watcher.ReadUntilClose()
	return watcher
}

func (h *Hub) Run() {
	for {
		select {
		case watcher := <-h.JoinWatcher:
			h.Watchers[watcher] = true
			if current := h.currentDocument(); current != nil {
				select {
				case watcher.Receive <- current:
				default:
				}
			}
		case watcher := <-h.LeaveWatcher:
			if _, ok := h.Watchers[watcher]; ok {
				delete(h.Watchers, watcher)
				close(watcher.Receive)
			}
		case scorer := <-h.joinScorer:
			h.scorers[scorer] = true
		case scorer := <-h.LeaveScorer:
			if _, ok := h.scorers[scorer]; ok {
				delete(h.scorers, scorer)
				close(scorer.Receive)
			}
		case event := <-h.Events:
			event.execute(h)
		case doc, ok := <-h.feed.C:
			if !ok {
				return
			}
			h.ToAllWatchers(doc)
		case err := <-h.Errors:
			h.logger.PrintError(err, map[string]string{"match_id": h.MatchID})
			// A pump that already exited never drains Close; skipping it
			// keeps the run loop from wedging on the send.
			for s := range h.scorers {
				select {
				case s.Close <- err:
				default:
				}
			}
			for w := range h.Watchers {
				select {
				case w.Close <- err:
				default:
				}
			}
		case <-h.done:
			h.feed.Close()
			for s := range h.scorers {
				close(s.Receive)
			}
			for w := range h.Watchers {
				close(w.Receive)
			}
			return
		}
	}
}

// Stop tears the hub down and closes its store feed.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) ToAllWatchers(msg []byte) {
	for watcher := range h.Watchers {
		select {
		case watcher.Receive <- msg:
		default:
			close(watcher.Receive)
			delete(h.Watchers, watcher)
		}
	}
}

// ackScorer and rejectScorer answer the initiating action only; per the
// error design, a failed action never disturbs the watchers.
func (h *Hub) ackScorer(response envelope) {
	h.toScorers(h.toByteArr(response))
}

func (h *Hub) rejectScorer(err error) {
	h.toScorers(h.toByteArr(envelope{"error": err.Error()}))
}

func (h *Hub) toScorers(msg []byte) {
	for scorer := range h.scorers {
		select {
		case scorer.Receive <- msg:
		default:
			close(scorer.Receive)
			delete(h.scorers, scorer)
		}
	}
}

func (h *Hub) toByteArr(response envelope) []byte {
	bytes, err := json.Marshal(response)
	if err != nil {
		return []byte(`{"error":"internal encoding failure"}`)
	}
	return bytes
}

func (h *Hub) currentDocument() []byte {
	raw, err := h.models.Matches.Get(context.Background(), h.MatchID)
	if err != nil {
		return nil
	}
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return doc
}
