// Package store keeps the restore record that lets a session pick its
// reservation hold up again after a reload.  Each backend holds at most
// one record per key.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iliyamo/cowork-booking/internal/model"
)

// DefaultKey names the restore record of a single-session client.
const DefaultKey = "activeReservation"

// ErrCorrupt is returned by Load when the stored value cannot be decoded
// into a usable record.  Callers should Remove it.
var ErrCorrupt = errors.New("corrupt restore record")

// Store persists restore records.  Load returns (nil, nil) when nothing is
// stored under key.
type Store interface {
	Load(ctx context.Context, key string) (*model.RestoreRecord, error)
	Save(ctx context.Context, key string, rec model.RestoreRecord) error
	Remove(ctx context.Context, key string) error
}

// SessionKey scopes DefaultKey to one booking session.
func SessionKey(sessionID string) string {
	if sessionID == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + sessionID
}

func decode(raw []byte) (*model.RestoreRecord, error) {
	var rec model.RestoreRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	if rec.ReservationID == "" {
		return nil, ErrCorrupt
	}
	return &rec, nil
}
