// Package store provides the real-time document store the scoring system
// persists into: a hierarchical key-value store addressed by slash-separated
// paths, where the first two segments name a record (matches/{id},
// tournaments/{id}, admins/{id}) and any further segments address a field
// inside it. Writes replace whole values, multi-path writes land atomically,
// and subscribers are pushed the full current record value after every
// change that touches it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

type Store interface {
	// Read returns the current value at path, which may address a whole
	// record or a field within one.
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// List returns all records directly under a top-level collection,
	// keyed by their record ID.
	List(ctx context.Context, collection string) (map[string]json.RawMessage, error)

	// Write replaces the whole value at path.
	Write(ctx context.Context, path string, value any) error

	// WriteMulti applies several path writes together; either all land or
	// none do.
	WriteMulti(ctx context.Context, updates map[string]any) error

	// Merge updates only the given fields of the object at path, leaving
	// the rest untouched.
	Merge(ctx context.Context, path string, fields map[string]any) error

	// Subscribe registers a push feed for the record containing path. The
	// subscription channel receives the full current record value after
	// every change. Callers must Close the subscription on teardown.
	Subscribe(path string) *Subscription
}

// Subscription is a live push feed for one record path. A slow consumer
// that falls more than a buffer's worth behind misses intermediate values;
// the next change always delivers the full current state.
type Subscription struct {
	C      <-chan json.RawMessage
	path   string
	cancel func()
}

func (s *Subscription) Path() string {
	return s.path
}

func (s *Subscription) Close() {
	s.cancel()
}

const subscriptionBuffer = 16

// notifier fans record changes out to in-process subscribers. Both store
// implementations embed one; pushes never block a writer.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan json.RawMessage
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]chan json.RawMessage)}
}

func (n *notifier) subscribe(recordPath string) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	ch := make(chan json.RawMessage, subscriptionBuffer)

	if n.subs[recordPath] == nil {
		n.subs[recordPath] = make(map[int]chan json.RawMessage)
	}
	n.subs[recordPath][id] = ch

	return &Subscription{
		C:    ch,
		path: recordPath,
		cancel: func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sub, ok := n.subs[recordPath][id]; ok {
				delete(n.subs[recordPath], id)
				close(sub)
			}
		},
	}
}

func (n *notifier) publish(recordPath string, value json.RawMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[recordPath] {
		select {
		case ch <- value:
		default:
		}
	}
}

// splitPath separates a path into its record path (collection/id) and the
// field segments below it.
func splitPath(path string) (recordPath string, fieldPath []string, err error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", nil, ErrInvalidPath
	}
	return segments[0] + "/" + segments[1], segments[2:], nil
}
