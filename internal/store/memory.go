package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryStore is a map-backed Store with the same path and subscription
// semantics as the Postgres implementation. Used by tests and available as
// a single-process backend.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]json.RawMessage
	notifier *notifier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]json.RawMessage),
		notifier: newNotifier(),
	}
}

func (s *MemoryStore) Read(_ context.Context, path string) (json.RawMessage, error) {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	record, ok := s.records[recordPath]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if len(fieldPath) == 0 {
		return record, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(record, &decoded); err != nil {
		return nil, err
	}
	value, ok := navigate(decoded, fieldPath)
	if !ok {
		return nil, ErrNotFound
	}
	return json.Marshal(value)
}

func (s *MemoryStore) List(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	prefix := collection + "/"

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(map[string]json.RawMessage)
	for path, value := range s.records {
		if strings.HasPrefix(path, prefix) {
			records[path[len(prefix):]] = value
		}
	}
	return records, nil
}

func (s *MemoryStore) Write(_ context.Context, path string, value any) error {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = s.writeLocked(recordPath, fieldPath, value)
	record := s.records[recordPath]
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notifier.publish(recordPath, record)
	return nil
}

func (s *MemoryStore) WriteMulti(_ context.Context, updates map[string]any) error {
	type parsed struct {
		recordPath string
		fieldPath  []string
		value      any
	}

	parsedUpdates := make([]parsed, 0, len(updates))
	for path, value := range updates {
		recordPath, fieldPath, err := splitPath(path)
		if err != nil {
			return err
		}
		parsedUpdates = append(parsedUpdates, parsed{recordPath, fieldPath, value})
	}

	s.mu.Lock()
	// Stage against a copy so a failed nested write leaves nothing applied.
	staged := make(map[string]json.RawMessage, len(s.records))
	for k, v := range s.records {
		staged[k] = v
	}
	original := s.records
	s.records = staged

	touched := make(map[string]bool)
	for _, u := range parsedUpdates {
		if err := s.writeLocked(u.recordPath, u.fieldPath, u.value); err != nil {
			s.records = original
			s.mu.Unlock()
			return err
		}
		touched[u.recordPath] = true
	}

	notifyValues := make(map[string]json.RawMessage)
	for recordPath := range touched {
		notifyValues[recordPath] = s.records[recordPath]
	}
	s.mu.Unlock()

	for recordPath, value := range notifyValues {
		s.notifier.publish(recordPath, value)
	}
	return nil
}

func (s *MemoryStore) Merge(_ context.Context, path string, fields map[string]any) error {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	record, ok := s.records[recordPath]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}

	var decoded map[string]any
	if err := json.Unmarshal(record, &decoded); err != nil {
		s.mu.Unlock()
		return err
	}

	target := decoded
	for _, segment := range fieldPath {
		next, ok := target[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[segment] = next
		}
		target = next
	}
	for key, value := range fields {
		target[key] = value
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.records[recordPath] = encoded
	s.mu.Unlock()

	s.notifier.publish(recordPath, encoded)
	return nil
}

func (s *MemoryStore) Subscribe(path string) *Subscription {
	recordPath, _, err := splitPath(path)
	if err != nil {
		recordPath = path
	}
	return s.notifier.subscribe(recordPath)
}

func (s *MemoryStore) writeLocked(recordPath string, fieldPath []string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if len(fieldPath) == 0 {
		s.records[recordPath] = encoded
		return nil
	}

	record, ok := s.records[recordPath]
	if !ok {
		return ErrNotFound
	}

	var decoded map[string]any
	if err := json.Unmarshal(record, &decoded); err != nil {
		return err
	}

	target := decoded
	for _, segment := range fieldPath[:len(fieldPath)-1] {
		next, ok := target[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[segment] = next
		}
		target = next
	}

	var plain any
	if err := json.Unmarshal(encoded, &plain); err != nil {
		return err
	}
	target[fieldPath[len(fieldPath)-1]] = plain

	updated, err := json.Marshal(decoded)
	if err != nil {
		return err
	}
	s.records[recordPath] = updated
	return nil
}

func navigate(value map[string]any, fieldPath []string) (any, bool) {
	var current any = value
	for _, segment := range fieldPath {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
