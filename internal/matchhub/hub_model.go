package matchhub

import (
	"context"
	"errors"
	"sync"

	"CricketScoreApi/internal/cricket"
	"CricketScoreApi/internal/data"
	"CricketScoreApi/internal/jsonlog"
)

// HubModel tracks the hubs of matches currently being scored or watched.
type HubModel struct {
	mu     sync.Mutex
	active map[string]*Hub

	models      data.Models
	logger      *jsonlog.Logger
	onCompleted func(match *cricket.MatchData)
}

func NewHubModel(models data.Models, logger *jsonlog.Logger,
	onCompleted func(match *cricket.MatchData)) *HubModel {

	return &HubModel{
		active:      make(map[string]*Hub),
		models:      models,
		logger:      logger,
		onCompleted: onCompleted,
	}
}

// StartScoring returns the hub for a match, creating it if needed, after
// checking that the match is not finished and that the requesting admin
// holds its lock.
func (m *HubModel) StartScoring(ctx context.Context, matchID, adminID string) (*Hub, error) {
	match, err := m.models.Matches.Get(ctx, matchID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			return nil, ErrMatchNotFound
		default:
			return nil, err
		}
	}

	if match.Meta.Status == cricket.StatusCompleted {
		return nil, ErrMatchCompleted
	}
	if match.Lock == nil || match.Lock.HolderID != adminID {
		return nil, ErrScorerNotAuthorized
	}

	// Scoring begins the match: the first authorized session moves it out
	// of NOT_STARTED.
	if match.Meta.Status == cricket.StatusNotStarted {
		match.Meta.Status = cricket.StatusLive
		if err := m.models.Matches.Update(ctx, match); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.active[matchID]
	if !ok {
		hub = newHub(matchID, adminID, m.models, m.logger, m.completed)
		m.active[matchID] = hub
		go hub.Run()
	} else {
		// Lock ownership may have moved since the hub was created; the
		// current holder is the one allowed to score.
		hub.AllowedScorer = adminID
	}

	return hub, nil
}

// Watch returns the hub for read-only viewing, creating one (with no
// authorized scorer) if the match exists but is not being scored here.
func (m *HubModel) Watch(ctx context.Context, matchID string) (*Hub, error) {
	m.mu.Lock()
	if hub, ok := m.active[matchID]; ok {
		m.mu.Unlock()
		return hub, nil
	}
	m.mu.Unlock()

	if _, err := m.models.Matches.Get(ctx, matchID); err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			return nil, ErrMatchNotFound
		default:
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.active[matchID]
	if !ok {
		hub = newHub(matchID, "", m.models, m.logger, m.completed)
		m.active[matchID] = hub
		go hub.Run()
	}
	return hub, nil
}

// completed runs when a hub's match reaches its result: the caller's
// callback fires, then the hub is retired so it does not linger in the
// active map until process shutdown.
func (m *HubModel) completed(match *cricket.MatchData) {
	if m.onCompleted != nil {
		m.onCompleted(match)
	}
	m.retire(match.MatchID)
}

func (m *HubModel) retire(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.active[matchID]; ok {
		hub.Stop()
		delete(m.active, matchID)
	}
}

// ActiveCount reports how many matches currently have a running hub.
func (m *HubModel) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Shutdown stops every active hub.
func (m *HubModel) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.active {
		hub.Stop()
		delete(m.active, id)
	}
}
