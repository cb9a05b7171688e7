package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
)

type AppConfig struct {
	// UserAgent identifies this application to the NWS API (required by it).
	UserAgent string

	// Mode selects the forecast flavor fetched from the NWS API.
	Mode forecast.Mode

	// RefreshInterval controls how often forecasts are refetched.
	RefreshInterval time.Duration

	// StoreMaxAge marks cached forecasts older than this as missing.
	StoreMaxAge time.Duration

	// HTTPTimeout bounds outbound API calls.
	HTTPTimeout time.Duration

	// Points to track.
	Points []forecast.Location

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	cfg := &AppConfig{}

	cfg.UserAgent = getenvDefault("NWS_USER_AGENT", "nws-daily-forecast (github.com/nwsdaily/nws-daily-forecast)")

	mode := forecast.Mode(getenvDefault("NWS_FORECAST_MODE", string(forecast.ModeDayNight)))
	if mode != forecast.ModeDayNight && mode != forecast.ModeHourly {
		return nil, fmt.Errorf("invalid NWS_FORECAST_MODE: %q", mode)
	}
	cfg.Mode = mode

	interval, err := getenvDuration("REFRESH_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	maxAge, err := getenvDuration("STORE_MAX_AGE", "6h")
	if err != nil {
		return nil, err
	}
	cfg.StoreMaxAge = maxAge

	timeout, err := getenvDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	points, err := loadPoints()
	if err != nil {
		return nil, err
	}
	cfg.Points = points

	return cfg, nil
}

// pointSpec is one entry of the points file. Either lat/lon or a geocodable
// city (plus GEOCODER_API_KEY) must be given.
type pointSpec struct {
	Name    string   `yaml:"name"`
	Lat     *float64 `yaml:"lat"`
	Lon     *float64 `yaml:"lon"`
	City    string   `yaml:"city"`
	Country string   `yaml:"country"`
}

type pointsFile struct {
	Points []pointSpec `yaml:"points"`
}

// loadPoints reads tracked points from POINTS_FILE (YAML) or, failing that,
// from the NWS_POINTS env var ("name:lat,lon" entries separated by ";").
func loadPoints() ([]forecast.Location, error) {
	if path := os.Getenv("POINTS_FILE"); path != "" {
		return loadPointsFile(path)
	}

	raw := os.Getenv("NWS_POINTS")
	if raw == "" {
		return nil, fmt.Errorf("no points configured; set POINTS_FILE or NWS_POINTS")
	}

	var points []forecast.Location
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, coords, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid NWS_POINTS entry %q; want name:lat,lon", entry)
		}
		latStr, lonStr, ok := strings.Cut(coords, ",")
		if !ok {
			return nil, fmt.Errorf("invalid NWS_POINTS entry %q; want name:lat,lon", entry)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}

		points = append(points, forecast.Location{
			Name: strings.TrimSpace(name),
			Lat:  &lat,
			Lon:  &lon,
		})
	}

	return points, nil
}

func loadPointsFile(path string) ([]forecast.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading points file: %w", err)
	}

	var file pointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing points file: %w", err)
	}

	var points []forecast.Location
	for i, spec := range file.Points {
		if spec.Name == "" {
			return nil, fmt.Errorf("points[%d]: name is required", i)
		}

		if spec.Lat == nil || spec.Lon == nil {
			lat, lon, err := geocodePoint(spec)
			if err != nil {
				return nil, fmt.Errorf("points[%d] %q: %w", i, spec.Name, err)
			}
			spec.Lat, spec.Lon = &lat, &lon
		}

		points = append(points, forecast.Location{
			Name: spec.Name,
			Lat:  spec.Lat,
			Lon:  spec.Lon,
		})
	}

	return points, nil
}

// geocodePoint resolves a city/country spec to coordinates via the Google
// geocoding API.
func geocodePoint(spec pointSpec) (float64, float64, error) {
	if spec.City == "" {
		return 0, 0, fmt.Errorf("either lat/lon or city must be set")
	}

	key := os.Getenv("GEOCODER_API_KEY")
	if key == "" {
		return 0, 0, fmt.Errorf("city given without coordinates and GEOCODER_API_KEY is not set")
	}
	geocoder.ApiKey = key

	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    spec.City,
		Country: spec.Country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding %q: %w", spec.City, err)
	}

	log.Infof("geocoded %s to %.4f,%.4f", spec.City, loc.Latitude, loc.Longitude)
	return loc.Latitude, loc.Longitude, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
