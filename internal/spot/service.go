package spot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cityparkhub/parkctl/internal/cache"
	"github.com/cityparkhub/parkctl/internal/gateway"
)

const cacheKeySpots = "spots"

// Service reads parking spots from the backend with a shared client cache in
// front of the listing query.
type Service struct {
	gw    *gateway.Gateway
	cache *cache.Cache
	log   *logrus.Logger
}

func NewService(gw *gateway.Gateway, c *cache.Cache, log *logrus.Logger) *Service {
	return &Service{
		gw:    gw,
		cache: c,
		log:   log,
	}
}

// List returns all parking spots. The result is cached; a read-only listing
// query gets the gateway's fixed retry budget.
func (s *Service) List(ctx context.Context) ([]Spot, error) {
	if v, ok := s.cache.Get(cacheKeySpots); ok {
		return v.([]Spot), nil
	}

	var spots []Spot
	if err := s.gw.Get(ctx, "/api/parking/spots", nil, &spots, gateway.WithRetry()); err != nil {
		return nil, err
	}

	s.cache.Set(cacheKeySpots, spots)
	s.log.WithField("count", len(spots)).Debug("fetched parking spots")
	return spots, nil
}

// Availability fetches fresh counts for one spot, bypassing the cache.
func (s *Service) Availability(ctx context.Context, id int) (*Spot, error) {
	var sp Spot
	path := fmt.Sprintf("/api/parking/spots/%d/availability", id)
	if err := s.gw.Get(ctx, path, nil, &sp, gateway.WithRetry()); err != nil {
		return nil, err
	}
	return &sp, nil
}
