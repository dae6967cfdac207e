package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"CricketScoreApi/internal/store"
)

// Admin is the persisted record at admins/{adminId}. The ID itself is a
// reversible encoding of the username, so this record exists purely for
// attribution and first-seen bookkeeping.
type Admin struct {
	Username  string `json:"username"`
	CreatedAt int64  `json:"createdAtEpochMs"`
}

type AdminModel struct {
	store store.Store
}

func AdminPath(adminID string) string {
	return "admins/" + adminID
}

func (m AdminModel) Get(ctx context.Context, adminID string) (*Admin, error) {
	raw, err := m.store.Read(ctx, AdminPath(adminID))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	var admin Admin
	if err := json.Unmarshal(raw, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetOrCreate lazily creates the admin record on first login.
func (m AdminModel) GetOrCreate(ctx context.Context, adminID, username string) (*Admin, error) {
	admin, err := m.Get(ctx, adminID)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	admin = &Admin{
		Username:  username,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := m.store.Write(ctx, AdminPath(adminID), admin); err != nil {
		return nil, err
	}
	return admin, nil
}
