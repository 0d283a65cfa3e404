// internal/core/domain/airquality/resolver.go
package airquality

import (
	"context"
	"fmt"
	"time"

	"air-quality-alert-bot/pkg/geo"
)

// StationStore - источник датчиков со свежими измерениями
type StationStore interface {
	// FreshStations возвращает датчики, у которых измерение не старше since
	FreshStations(ctx context.Context, since time.Time) ([]Station, error)
}

// Resolver находит ближайший датчик со свежими данными к заданной точке
type Resolver struct {
	store  StationStore
	maxAge time.Duration
}

// NewResolver создает резолвер ближайшего датчика.
// maxAge - максимальный возраст измерения, после которого датчик игнорируется.
func NewResolver(store StationStore, maxAge time.Duration) *Resolver {
	return &Resolver{
		store:  store,
		maxAge: maxAge,
	}
}

// FindNearest возвращает ближайший к точке датчик в радиусе maxRadiusKM
// со свежим измерением, или (nil, nil) если такого нет.
// Ошибка возвращается только при сбое хранилища.
func (r *Resolver) FindNearest(ctx context.Context, lat, lon, maxRadiusKM float64) (*Station, error) {
	cutoff := time.Now().UTC().Add(-r.maxAge)

	stations, err := r.store.FreshStations(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load fresh stations: %w", err)
	}

	var nearest *Station
	bestDistance := maxRadiusKM

	for i := range stations {
		st := &stations[i]
		if st.LastMeasurementAt.Before(cutoff) {
			continue
		}

		distance := geo.DistanceKM(lat, lon, st.Latitude, st.Longitude)
		if distance <= bestDistance {
			// При равном расстоянии остается первый найденный
			if nearest == nil || distance < bestDistance {
				nearest = st
				bestDistance = distance
			}
		}
	}

	return nearest, nil
}
