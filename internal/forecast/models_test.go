package forecast

import (
	"encoding/json"
	"strings"
	"testing"
)

const nwsPeriodJSON = `{
	"number": 1,
	"name": "This Afternoon",
	"startTime": "2024-03-01T12:00:00-07:00",
	"endTime": "2024-03-01T18:00:00-07:00",
	"isDaytime": true,
	"temperature": 70,
	"temperatureUnit": "F",
	"windSpeed": "10 mph",
	"shortForecast": "Sunny",
	"detailedForecast": "Sunny, with a high near 70."
}`

func TestPeriodUnmarshalKeepsUnknownFields(t *testing.T) {
	var p Period
	if err := json.Unmarshal([]byte(nwsPeriodJSON), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.Description != "Sunny, with a high near 70." {
		t.Errorf("description = %q", p.Description)
	}
	if p.Timestamp != "2024-03-01T12:00:00-07:00" {
		t.Errorf("timestamp = %q", p.Timestamp)
	}
	if p.Daytime == nil || !*p.Daytime {
		t.Error("daytime flag not decoded")
	}
	if p.Temperature == nil || *p.Temperature != 70 {
		t.Errorf("temperature = %v", p.Temperature)
	}
	if p.TemperatureLow != nil {
		t.Error("temperatureLow should be absent")
	}

	for _, key := range []string{"number", "name", "endTime", "temperatureUnit", "windSpeed", "shortForecast"} {
		if _, ok := p.Extra[key]; !ok {
			t.Errorf("unknown field %q was dropped", key)
		}
	}
	for _, key := range []string{keyDescription, keyTimestamp, keyDaytime, keyTemperature} {
		if _, ok := p.Extra[key]; ok {
			t.Errorf("known field %q leaked into Extra", key)
		}
	}
}

func TestPeriodMarshalOmitsRemovedFields(t *testing.T) {
	var p Period
	if err := json.Unmarshal([]byte(nwsPeriodJSON), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	consolidated := convertSingle(p)
	data, err := json.Marshal(consolidated)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	if strings.Contains(out, `"isDaytime"`) {
		t.Errorf("isDaytime must be dropped from output: %s", out)
	}
	if !strings.Contains(out, `"shortForecast":"Sunny"`) {
		t.Errorf("unknown field did not survive the round trip: %s", out)
	}
	if !strings.Contains(out, `"temperature":70`) {
		t.Errorf("temperature missing from day entry: %s", out)
	}
	if strings.Contains(out, `"temperatureLow"`) {
		t.Errorf("day-only entry must not carry temperatureLow: %s", out)
	}
}

func TestPeriodMarshalNightEntry(t *testing.T) {
	night := makePeriod("2024-03-01T18:00:00-07:00", false, 48, "Clear")
	data, err := json.Marshal(convertSingle(night))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	if strings.Contains(out, `"temperature":`) {
		t.Errorf("night entry must not carry temperature: %s", out)
	}
	if !strings.Contains(out, `"temperatureLow":48`) {
		t.Errorf("temperatureLow missing: %s", out)
	}
}

func TestLocationKey(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected string
	}{
		{
			name:     "named point",
			loc:      Location{Name: "home", Lat: fptr(39.74), Lon: fptr(-104.99)},
			expected: "home",
		},
		{
			name:     "coordinates only",
			loc:      Location{Lat: fptr(39.74), Lon: fptr(-104.99)},
			expected: "39.7400,-104.9900",
		},
		{
			name:     "empty",
			loc:      Location{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.Key(); got != tt.expected {
				t.Errorf("Key() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestModeMergeEnabled(t *testing.T) {
	if !ModeDayNight.MergeEnabled() {
		t.Error("daynight mode must enable merging")
	}
	if ModeHourly.MergeEnabled() {
		t.Error("hourly mode must not enable merging")
	}
}
