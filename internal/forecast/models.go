package forecast

import (
	"encoding/json"
	"fmt"
)

// Mode identifies the forecast style a source produces.
type Mode string

const (
	// ModeDayNight splits each day into a day period and a night period.
	ModeDayNight Mode = "daynight"
	// ModeHourly is already one period per hour; no consolidation applies.
	ModeHourly Mode = "hourly"
)

// MergeEnabled reports whether periods in this mode should be consolidated
// into one entry per calendar day.
func (m Mode) MergeEnabled() bool {
	return m == ModeDayNight
}

// Location represents a point for which forecasts are tracked.
type Location struct {
	Name string   `json:"name" yaml:"name"`
	Lat  *float64 `json:"lat,omitempty" yaml:"lat"`
	Lon  *float64 `json:"lon,omitempty" yaml:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Lat != nil && l.Lon != nil {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return ""
}

// JSON keys the consolidator rewrites. Everything else a provider sends is
// carried through Extra untouched.
const (
	keyDescription    = "detailedForecast"
	keyTimestamp      = "startTime"
	keyDaytime        = "isDaytime"
	keyTemperature    = "temperature"
	keyTemperatureLow = "temperatureLow"
)

// Period is one provider-supplied forecast entry. Before consolidation each
// entry carries Daytime and Temperature; after consolidation Daytime is gone
// and TemperatureLow may be present. Pointer fields distinguish an absent
// field from a zero value, so removed fields disappear from the JSON output.
type Period struct {
	Description    string
	Timestamp      string
	Daytime        *bool
	Temperature    *float64
	TemperatureLow *float64

	// Extra holds provider fields the consolidator does not touch.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and parks everything else in Extra.
func (p *Period) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Period{}

	if v, ok := raw[keyDescription]; ok {
		if err := json.Unmarshal(v, &p.Description); err != nil {
			return fmt.Errorf("invalid %s: %w", keyDescription, err)
		}
		delete(raw, keyDescription)
	}
	if v, ok := raw[keyTimestamp]; ok {
		if err := json.Unmarshal(v, &p.Timestamp); err != nil {
			return fmt.Errorf("invalid %s: %w", keyTimestamp, err)
		}
		delete(raw, keyTimestamp)
	}
	if v, ok := raw[keyDaytime]; ok {
		if err := json.Unmarshal(v, &p.Daytime); err != nil {
			return fmt.Errorf("invalid %s: %w", keyDaytime, err)
		}
		delete(raw, keyDaytime)
	}
	if v, ok := raw[keyTemperature]; ok {
		if err := json.Unmarshal(v, &p.Temperature); err != nil {
			return fmt.Errorf("invalid %s: %w", keyTemperature, err)
		}
		delete(raw, keyTemperature)
	}
	if v, ok := raw[keyTemperatureLow]; ok {
		if err := json.Unmarshal(v, &p.TemperatureLow); err != nil {
			return fmt.Errorf("invalid %s: %w", keyTemperatureLow, err)
		}
		delete(raw, keyTemperatureLow)
	}

	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// MarshalJSON re-emits Extra alongside whichever known fields are present.
func (p Period) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		out[k] = v
	}

	out[keyDescription] = p.Description
	out[keyTimestamp] = p.Timestamp
	if p.Daytime != nil {
		out[keyDaytime] = *p.Daytime
	}
	if p.Temperature != nil {
		out[keyTemperature] = *p.Temperature
	}
	if p.TemperatureLow != nil {
		out[keyTemperatureLow] = *p.TemperatureLow
	}

	return json.Marshal(out)
}

func (p Period) isDay() bool {
	return p.Daytime != nil && *p.Daytime
}

// clone returns a deep copy so consolidated entries never alias their sources.
func (p Period) clone() Period {
	out := p
	if p.Daytime != nil {
		v := *p.Daytime
		out.Daytime = &v
	}
	if p.Temperature != nil {
		v := *p.Temperature
		out.Temperature = &v
	}
	if p.TemperatureLow != nil {
		v := *p.TemperatureLow
		out.TemperatureLow = &v
	}
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
