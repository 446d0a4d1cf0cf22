package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cowork-booking/internal/cache"
	"github.com/iliyamo/cowork-booking/internal/model"
	"github.com/iliyamo/cowork-booking/internal/workspace"
)

// ErrUnknownWorkspaceType is returned for display names without a
// backend mapping.
var ErrUnknownWorkspaceType = errors.New("unknown workspace type")

const locationsPrefix = "locations"

// LocationsService lists sites offering a workspace type.  Results are
// cached per type for the current day.
type LocationsService struct {
	db    Selector
	cache cache.Cache
	ttl   time.Duration
	clock clockwork.Clock
	log   *logrus.Entry
}

func NewLocationsService(db Selector, c cache.Cache, ttl time.Duration, clock clockwork.Clock, log *logrus.Entry) *LocationsService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocationsService{db: db, cache: c, ttl: ttl, clock: clock, log: componentLog(log, "locations-service")}
}

// FetchAvailableLocations returns the locations for a display workspace
// type.  An empty type yields an empty list.
func (s *LocationsService) FetchAvailableLocations(ctx context.Context, displayType string) ([]model.Location, error) {
	if displayType == "" {
		return []model.Location{}, nil
	}
	enum, ok := workspace.ToEnum(displayType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkspaceType, displayType)
	}

	key := cache.Key(locationsPrefix, enum, cache.DayKey(s.clock.Now()))
	var cached []model.Location
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("locations cache read failed")
	} else if hit {
		return cached, nil
	}

	var rows []model.Location
	q := url.Values{"type": {"eq." + enum}}
	if err := s.db.Select(ctx, "available_workspace_locations", q, &rows); err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	if rows == nil {
		rows = []model.Location{}
	}
	if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
		s.log.WithError(err).Warn("locations cache write failed")
	}
	return rows, nil
}

// ClearCache evicts every cached location list.
func (s *LocationsService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx, locationsPrefix+":")
}
