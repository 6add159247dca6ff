// Package enrichment provides best-effort weather and news data for the display.
//
// Readings are refreshed in the background and read without blocking.
// A failed refresh never leaves a reader without a value: weather falls
// back to a placeholder reading and news to an empty list.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// Service caches the latest enrichment readings
type Service struct {
	weather WeatherSource
	news    NewsProvider
	city    string
	logger  *slog.Logger

	mu       sync.RWMutex
	readings map[string]Weather

	headlines atomic.Pointer[[]v1alpha1.Headline]
}

// NewService creates a service reporting weather for city. Either source
// may be nil to disable it.
func NewService(weather WeatherSource, news NewsProvider, city string, logger *slog.Logger) *Service {
	return &Service{
		weather:  weather,
		news:     news,
		city:     city,
		logger:   logger,
		readings: map[string]Weather{city: Placeholder(city)},
	}
}

// City returns the header city
func (s *Service) City() string {
	return s.city
}

// Weather returns the latest reading for city. Unknown cities report a
// placeholder and are fetched on the next weather refresh.
func (s *Service) Weather(city string) Weather {
	if city == "" {
		city = s.city
	}

	s.mu.RLock()
	w, ok := s.readings[city]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	if _, ok := s.readings[city]; !ok {
		s.readings[city] = Placeholder(city)
	}
	s.mu.Unlock()
	return Placeholder(city)
}

// RetainCities stops tracking every city except the header city and
// those in cities
func (s *Service) RetainCities(cities []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for city := range s.readings {
		if city != s.city && !slices.Contains(cities, city) {
			delete(s.readings, city)
			s.logger.Debug("stopped tracking weather", "city", city)
		}
	}
}

// Headlines returns the latest headlines, possibly none
func (s *Service) Headlines() []v1alpha1.Headline {
	if p := s.headlines.Load(); p != nil {
		return *p
	}
	return nil
}

// RefreshWeather fetches every tracked city. A city whose lookup fails
// reverts to the placeholder reading.
func (s *Service) RefreshWeather(ctx context.Context) error {
	if s.weather == nil {
		return nil
	}

	s.mu.RLock()
	cities := make([]string, 0, len(s.readings))
	for city := range s.readings {
		cities = append(cities, city)
	}
	s.mu.RUnlock()
	slices.Sort(cities)

	var errs []error
	for _, city := range cities {
		w, err := s.weather.Current(ctx, city)
		if err != nil {
			s.logger.Warn("weather refresh failed", "city", city, "error", err)
			w = Placeholder(city)
			errs = append(errs, err)
		} else {
			s.logger.Debug("weather updated", "city", city, "temperature", w.Temperature())
		}

		s.mu.Lock()
		// a city dropped while its lookup was in flight stays dropped
		if _, ok := s.readings[city]; ok {
			s.readings[city] = w
		}
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// RefreshNews replaces the headlines. A failed lookup clears them.
func (s *Service) RefreshNews(ctx context.Context) error {
	if s.news == nil {
		return nil
	}

	items, err := s.news.Headlines(ctx)
	if err != nil {
		s.logger.Warn("news refresh failed", "error", err)
		empty := []v1alpha1.Headline{}
		s.headlines.Store(&empty)
		return err
	}

	s.headlines.Store(&items)
	s.logger.Debug("news updated", "count", len(items))
	return nil
}
