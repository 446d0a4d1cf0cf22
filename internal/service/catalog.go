package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/cowork-booking/internal/cache"
	"github.com/iliyamo/cowork-booking/internal/model"
)

const (
	catalogKey = "workspaces:all"
	catalogTTL = time.Hour
)

// CatalogService lists the bookable workspaces.
type CatalogService struct {
	db    Selector
	cache cache.Cache
	log   *logrus.Entry
}

func NewCatalogService(db Selector, c cache.Cache, log *logrus.Entry) *CatalogService {
	return &CatalogService{db: db, cache: c, log: componentLog(log, "catalog-service")}
}

// ListWorkspaces returns validated workspaces ordered by type, newest
// type first.  force bypasses the cache.
func (s *CatalogService) ListWorkspaces(ctx context.Context, force bool) ([]model.Workspace, error) {
	if !force {
		var cached []model.Workspace
		if hit, err := s.cache.Get(ctx, catalogKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	var rows []map[string]any
	if err := s.db.Select(ctx, "workspace", url.Values{"select": {"*"}, "order": {"type.desc"}}, &rows); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	out := ValidateWorkspaces(rows, s.log)
	if err := s.cache.Set(ctx, catalogKey, out, catalogTTL); err != nil {
		s.log.WithError(err).Warn("catalog cache write failed")
	}
	return out, nil
}

// ClearCache drops the cached catalog.
func (s *CatalogService) ClearCache(ctx context.Context) error {
	return s.cache.Delete(ctx, catalogKey)
}

// ValidateWorkspaces keeps rows with an id and a type and normalizes
// their prices.  Rows missing a reservation price are marked
// NotReservable.
func ValidateWorkspaces(rows []map[string]any, log *logrus.Entry) []model.Workspace {
	out := make([]model.Workspace, 0, len(rows))
	for i, row := range rows {
		id := fmt.Sprint(row["id"])
		typ, _ := row["type"].(string)
		if row["id"] == nil || typ == "" {
			if log != nil {
				log.WithField("index", i).Warn("skipping invalid workspace row")
			}
			continue
		}
		ws := model.Workspace{
			ID:               id,
			Type:             typ,
			BasePrice:        number(row["base_price"]),
			BookingPrice:     number(row["booking_price"]),
			ReservationPrice: model.NotReservable,
		}
		if loc, ok := row["location_id"]; ok && loc != nil {
			ws.LocationID = fmt.Sprint(loc)
		}
		if rp, ok := row["reservation_price"]; ok && rp != nil {
			ws.ReservationPrice = number(rp)
		}
		out = append(out, ws)
	}
	return out
}

// number reads JSON numbers and numeric strings alike; PostgREST renders
// numeric columns as strings.
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		return gjson.Parse(n).Float()
	default:
		return 0
	}
}
