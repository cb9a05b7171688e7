package providers

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
)

// NWSSource implements forecast.Source against the National Weather Service
// API (api.weather.gov). A point lookup resolves each location to its
// gridpoint forecast URL, which is then cached for subsequent fetches.
type NWSSource struct {
	name    string
	baseURL string
	mode    forecast.Mode
	client  *resilientClient

	mu           sync.Mutex
	forecastURLs map[string]string
}

// NewNWSSource creates an NWS API source. The NWS API requires a User-Agent
// identifying the calling application.
func NewNWSSource(client *http.Client, userAgent string, mode forecast.Mode) *NWSSource {
	return &NWSSource{
		name:         "nws",
		baseURL:      "https://api.weather.gov",
		mode:         mode,
		client:       newResilientClient(client, "nws", userAgent),
		forecastURLs: make(map[string]string),
	}
}

func (s *NWSSource) Name() string {
	return s.name
}

func (s *NWSSource) Mode() forecast.Mode {
	return s.mode
}

// Forecast fetches the period forecast for loc in the source's mode.
func (s *NWSSource) Forecast(ctx context.Context, loc forecast.Location) ([]forecast.Period, error) {
	if loc.Lat == nil || loc.Lon == nil {
		return nil, fmt.Errorf("nws requires latitude and longitude for %q", loc.Key())
	}

	u, err := s.forecastURL(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("resolving gridpoint for %q: %w", loc.Key(), err)
	}

	var payload struct {
		Properties struct {
			Periods []forecast.Period `json:"periods"`
		} `json:"properties"`
	}
	if err := s.client.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("fetching forecast for %q: %w", loc.Key(), err)
	}

	log.Debugf("nws returned %d periods for %q", len(payload.Properties.Periods), loc.Key())
	return payload.Properties.Periods, nil
}

// forecastURL resolves the gridpoint forecast endpoint for loc via the
// /points lookup, caching the result per location.
func (s *NWSSource) forecastURL(ctx context.Context, loc forecast.Location) (string, error) {
	key := loc.Key()

	s.mu.Lock()
	if u, ok := s.forecastURLs[key]; ok {
		s.mu.Unlock()
		return u, nil
	}
	s.mu.Unlock()

	var payload struct {
		Properties struct {
			Forecast       string `json:"forecast"`
			ForecastHourly string `json:"forecastHourly"`
		} `json:"properties"`
	}

	pointURL := fmt.Sprintf("%s/points/%.4f,%.4f", s.baseURL, *loc.Lat, *loc.Lon)
	if err := s.client.getJSON(ctx, pointURL, &payload); err != nil {
		return "", err
	}

	u := payload.Properties.Forecast
	if s.mode == forecast.ModeHourly {
		u = payload.Properties.ForecastHourly
	}
	if u == "" {
		return "", fmt.Errorf("point lookup returned no forecast url for %q", key)
	}

	s.mu.Lock()
	s.forecastURLs[key] = u
	s.mu.Unlock()

	return u, nil
}
