package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
	"github.com/nwsdaily/nws-daily-forecast/internal/store"
)

func testApp(t *testing.T) (*fiber.App, *store.MemoryStore, forecast.Location) {
	t.Helper()

	lat, lon := 39.74, -104.99
	home := forecast.Location{Name: "home", Lat: &lat, Lon: &lon}

	app := fiber.New()
	memStore := store.NewMemoryStore(time.Hour)
	RegisterRoutes(app, memStore, []forecast.Location{home})

	return app, memStore, home
}

func TestForecastRequiresPoint(t *testing.T) {
	app, _, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestForecastUnknownPoint(t *testing.T) {
	app, _, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?point=atlantis", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestForecastNotYetCached(t *testing.T) {
	app, _, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?point=home", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestForecastReturnsCachedEntry(t *testing.T) {
	app, memStore, home := testApp(t)

	temp := 70.0
	memStore.SaveForecast(home, []forecast.Period{
		{
			Description: "### Day\nSunny\n\n### Night\nClear",
			Timestamp:   "2024-03-01T06:00:00-07:00",
			Temperature: &temp,
		},
	}, "### Today\nSunny\n### Tonight\nClear")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?point=home", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Summary  string            `json:"summary"`
		Forecast []forecast.Period `json:"forecast"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if body.Summary != "### Today\nSunny\n### Tonight\nClear" {
		t.Errorf("summary = %q", body.Summary)
	}
	if len(body.Forecast) != 1 || body.Forecast[0].Temperature == nil || *body.Forecast[0].Temperature != 70 {
		t.Errorf("unexpected forecast payload: %+v", body.Forecast)
	}
}

func TestPointsListsConfiguredPoints(t *testing.T) {
	app, _, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/points", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Points []forecast.Location `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Points) != 1 || body.Points[0].Name != "home" {
		t.Errorf("unexpected points payload: %+v", body.Points)
	}
}
