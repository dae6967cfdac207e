package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"CricketScoreApi/internal/assert"
)

func readJSON(t *testing.T, s Store, path string) map[string]any {
	t.Helper()

	raw, err := s.Read(context.Background(), path)
	assert.NilError(t, err)

	var decoded map[string]any
	err = json.Unmarshal(raw, &decoded)
	assert.NilError(t, err)
	return decoded
}

func TestMemoryStore_WriteAndRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "matches/m1", map[string]any{"matchId": "m1", "createdBy": "abc"})
	assert.NilError(t, err)

	record := readJSON(t, s, "matches/m1")
	assert.Equal(t, record["matchId"], "m1")
	assert.Equal(t, record["createdBy"], "abc")
}

func TestMemoryStore_ReadMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Read(context.Background(), "matches/nope")
	assert.Equal(t, err, error(ErrNotFound))
}

func TestMemoryStore_InvalidPath(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Read(ctx, "matches")
	assert.Equal(t, err, error(ErrInvalidPath))

	err = s.Write(ctx, "", "value")
	assert.Equal(t, err, error(ErrInvalidPath))
}

func TestMemoryStore_FieldWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "matches/m1", map[string]any{
		"matchId": "m1",
		"state":   map[string]any{"totalRuns": 0},
	})
	assert.NilError(t, err)

	err = s.Write(ctx, "matches/m1/state/totalRuns", 42)
	assert.NilError(t, err)

	record := readJSON(t, s, "matches/m1")
	state := record["state"].(map[string]any)
	assert.Equal(t, state["totalRuns"], 42.0)
	// Sibling fields survive a deep field write.
	assert.Equal(t, record["matchId"], "m1")
}

func TestMemoryStore_FieldWriteOnMissingRecord(t *testing.T) {
	s := NewMemoryStore()

	err := s.Write(context.Background(), "matches/nope/state", map[string]any{})
	assert.Equal(t, err, error(ErrNotFound))
}

func TestMemoryStore_FieldRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "matches/m1", map[string]any{
		"state": map[string]any{"totalRuns": 7},
	})
	assert.NilError(t, err)

	raw, err := s.Read(ctx, "matches/m1/state/totalRuns")
	assert.NilError(t, err)
	assert.Equal(t, string(raw), "7")

	_, err = s.Read(ctx, "matches/m1/state/missing")
	assert.Equal(t, err, error(ErrNotFound))
}

func TestMemoryStore_Merge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "matches/m1", map[string]any{
		"state": map[string]any{"totalRuns": 10, "currentStriker": nil},
	})
	assert.NilError(t, err)

	err = s.Merge(ctx, "matches/m1/state", map[string]any{"currentStriker": "Asha"})
	assert.NilError(t, err)

	record := readJSON(t, s, "matches/m1")
	state := record["state"].(map[string]any)
	assert.Equal(t, state["currentStriker"], "Asha")
	// Unmentioned fields are untouched.
	assert.Equal(t, state["totalRuns"], 10.0)
}

func TestMemoryStore_MergeMissingRecord(t *testing.T) {
	s := NewMemoryStore()

	err := s.Merge(context.Background(), "matches/nope", map[string]any{"a": 1})
	assert.Equal(t, err, error(ErrNotFound))
}

func TestMemoryStore_WriteMulti(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "tournaments/t1", map[string]any{
		"fixtures": map[string]any{
			"f1": map[string]any{"status": "SCHEDULED"},
		},
	})
	assert.NilError(t, err)

	err = s.WriteMulti(ctx, map[string]any{
		"matches/m1":                          map[string]any{"matchId": "m1"},
		"tournaments/t1/fixtures/f1/status":   "LIVE",
		"tournaments/t1/fixtures/f1/matchId":  "m1",
	})
	assert.NilError(t, err)

	match := readJSON(t, s, "matches/m1")
	assert.Equal(t, match["matchId"], "m1")

	state := readJSON(t, s, "tournaments/t1")
	fixture := state["fixtures"].(map[string]any)["f1"].(map[string]any)
	assert.Equal(t, fixture["status"], "LIVE")
	assert.Equal(t, fixture["matchId"], "m1")
}

func TestMemoryStore_WriteMultiAtomicity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Write(ctx, "matches/m1", map[string]any{"matchId": "m1"})
	assert.NilError(t, err)

	// The nested write targets a record that does not exist, so the whole
	// batch must be rejected without applying the valid update.
	err = s.WriteMulti(ctx, map[string]any{
		"matches/m1/flag":            true,
		"tournaments/missing/status": "LIVE",
	})
	assert.Error(t, err)

	record := readJSON(t, s, "matches/m1")
	_, flagged := record["flag"]
	assert.Equal(t, flagged, false)
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NilError(t, s.Write(ctx, "matches/m1", map[string]any{"matchId": "m1"}))
	assert.NilError(t, s.Write(ctx, "matches/m2", map[string]any{"matchId": "m2"}))
	assert.NilError(t, s.Write(ctx, "tournaments/t1", map[string]any{}))

	records, err := s.List(ctx, "matches")
	assert.NilError(t, err)
	assert.Equal(t, len(records), 2)

	_, ok := records["m1"]
	assert.Equal(t, ok, true)
}

func TestMemoryStore_SubscribePushesFullRecord(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NilError(t, s.Write(ctx, "matches/m1", map[string]any{"totalRuns": 0}))

	sub := s.Subscribe("matches/m1")
	defer sub.Close()

	// A field write still pushes the whole record.
	assert.NilError(t, s.Write(ctx, "matches/m1/totalRuns", 4))

	select {
	case raw := <-sub.C:
		var decoded map[string]any
		assert.NilError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, decoded["totalRuns"], 4.0)
	case <-time.After(time.Second):
		t.Fatal("no push received")
	}
}

func TestMemoryStore_SubscribeOtherRecordSilent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NilError(t, s.Write(ctx, "matches/m1", map[string]any{}))

	sub := s.Subscribe("matches/m2")
	defer sub.Close()

	assert.NilError(t, s.Write(ctx, "matches/m1", map[string]any{"totalRuns": 1}))

	select {
	case <-sub.C:
		t.Fatal("received push for an unrelated record")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlockWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NilError(t, s.Write(ctx, "matches/m1", map[string]any{}))

	sub := s.Subscribe("matches/m1")
	defer sub.Close()

	// Never drain the channel; writes past the buffer must still succeed.
	for i := 0; i < subscriptionBuffer*2; i++ {
		assert.NilError(t, s.Write(ctx, "matches/m1/counter", i))
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantRecord string
		wantFields int
		wantErr    bool
	}{
		{name: "record only", path: "matches/m1", wantRecord: "matches/m1"},
		{name: "nested field", path: "matches/m1/state/totalRuns",
			wantRecord: "matches/m1", wantFields: 2},
		{name: "leading slash tolerated", path: "/matches/m1", wantRecord: "matches/m1"},
		{name: "collection only", path: "matches", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, fields, err := splitPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, record, tt.wantRecord)
			assert.Equal(t, len(fields), tt.wantFields)
		})
	}
}
