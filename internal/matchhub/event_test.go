package matchhub

import (
	"testing"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/cricket"
)

func TestParseEvent_Delivery(t *testing.T) {
	event, err := GenericEvent{
		"type":       float64(0),
		"runs":       float64(4),
		"extrasType": "NONE",
		"isWicket":   false,
	}.parseEvent()

	assert.NilError(t, err)
	deliveryEvent, ok := event.(DeliveryEvent)
	assert.Equal(t, ok, true)
	assert.Equal(t, deliveryEvent.Input.Runs, 4)
	assert.Equal(t, deliveryEvent.Input.ExtrasType, cricket.ExtrasNone)
}

func TestParseEvent_DeliveryWithWicket(t *testing.T) {
	event, err := GenericEvent{
		"type":       float64(0),
		"runs":       float64(0),
		"extrasType": "NONE",
		"isWicket":   true,
		"wicketKind": "caught",
		"playerOut":  "striker",
		"fielder":    "Smith",
	}.parseEvent()

	assert.NilError(t, err)
	deliveryEvent := event.(DeliveryEvent)
	assert.Equal(t, *deliveryEvent.Input.WicketKind, cricket.WicketCaught)
	assert.Equal(t, *deliveryEvent.Input.PlayerOut, "striker")
	assert.Equal(t, *deliveryEvent.Input.Fielder, "Smith")
}

func TestParseEvent_DeliveryValidation(t *testing.T) {
	tests := []struct {
		name  string
		event GenericEvent
	}{
		{
			name: "unknown extras type",
			event: GenericEvent{"type": float64(0), "runs": float64(0),
				"extrasType": "PENALTY", "isWicket": false},
		},
		{
			name: "negative runs",
			event: GenericEvent{"type": float64(0), "runs": float64(-1),
				"extrasType": "NONE", "isWicket": false},
		},
		{
			name: "runs beyond plausible",
			event: GenericEvent{"type": float64(0), "runs": float64(8),
				"extrasType": "NONE", "isWicket": false},
		},
		{
			name: "wicket missing kind",
			event: GenericEvent{"type": float64(0), "runs": float64(0),
				"extrasType": "NONE", "isWicket": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.event.parseEvent()
			assert.Error(t, err)
		})
	}
}

func TestParseEvent_Player(t *testing.T) {
	event, err := GenericEvent{
		"type": float64(1),
		"role": "bowler",
		"name": "Chetan",
	}.parseEvent()

	assert.NilError(t, err)
	playerEvent := event.(PlayerEvent)
	assert.Equal(t, playerEvent.Role, RoleBowler)
	assert.Equal(t, playerEvent.Name, "Chetan")
}

func TestParseEvent_PlayerValidation(t *testing.T) {
	t.Run("unknown role", func(t *testing.T) {
		_, err := GenericEvent{"type": float64(1), "role": "umpire", "name": "X"}.parseEvent()
		assert.Equal(t, err, error(ErrEventValidationFailed))
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := GenericEvent{"type": float64(1), "role": "striker", "name": ""}.parseEvent()
		assert.Equal(t, err, error(ErrEventValidationFailed))
	})
}

func TestParseEvent_SimpleEvents(t *testing.T) {
	swap, err := GenericEvent{"type": float64(2)}.parseEvent()
	assert.NilError(t, err)
	_, ok := swap.(SwapEvent)
	assert.Equal(t, ok, true)

	undoEvent, err := GenericEvent{"type": float64(3)}.parseEvent()
	assert.NilError(t, err)
	_, ok = undoEvent.(UndoEvent)
	assert.Equal(t, ok, true)

	start, err := GenericEvent{"type": float64(4)}.parseEvent()
	assert.NilError(t, err)
	_, ok = start.(StartInningsEvent)
	assert.Equal(t, ok, true)
}

func TestParseEvent_Malformed(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		_, err := GenericEvent{"runs": float64(4)}.parseEvent()
		assert.Equal(t, err, error(ErrEventParseFailed))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := GenericEvent{"type": float64(99)}.parseEvent()
		assert.Equal(t, err, error(ErrEventParseFailed))
	})

	t.Run("type not a number", func(t *testing.T) {
		_, err := GenericEvent{"type": "delivery"}.parseEvent()
		assert.Equal(t, err, error(ErrEventParseFailed))
	})
}

func TestResolvePlayerOut(t *testing.T) {
	assert.Equal(t, resolvePlayerOut("striker", "Asha", "Binod"), "Asha")
	assert.Equal(t, resolvePlayerOut("nonStriker", "Asha", "Binod"), "Binod")
	assert.Equal(t, resolvePlayerOut("Deepa", "Asha", "Binod"), "Deepa")
}

func TestHelpers(t *testing.T) {
	src := map[string]any{"s": "text", "n": float64(7), "b": true}

	s, err := stringFromMap(src, "s")
	assert.NilError(t, err)
	assert.Equal(t, s, "text")

	n, err := intFromMap(src, "n")
	assert.NilError(t, err)
	assert.Equal(t, n, 7)

	b, err := boolFromMap(src, "b")
	assert.NilError(t, err)
	assert.Equal(t, b, true)

	_, err = stringFromMap(src, "missing")
	assert.Equal(t, err, error(ErrNoValueForKey))

	_, err = intFromMap(src, "s")
	assert.Equal(t, err, error(ErrValueNotAsserted))
}
