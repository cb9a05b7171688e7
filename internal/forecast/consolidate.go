package forecast

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const dayLayout = "2006-01-02"

// BuildDaily reshapes a day/night period sequence into at most one entry per
// calendar day, plus a two-section text summary built from the first two
// input periods. With merging disabled the input is returned unchanged and
// the summary is empty. An empty input yields a nil forecast, meaning no
// forecast is available.
//
// Anomalies never fail the whole run: periods with unparseable timestamps
// and days that cannot be merged are logged and skipped.
func BuildDaily(periods []Period, mergeEnabled bool) ([]Period, string) {
	if len(periods) == 0 {
		return nil, ""
	}
	if !mergeEnabled {
		log.Debug("merging disabled; returning periods unchanged")
		return periods, ""
	}

	days, buckets := bucketByDay(periods)

	daily := make([]Period, 0, len(days))
	tomorrow := false
	for _, day := range days {
		entries := buckets[day]
		switch {
		case len(entries) == 1:
			// A lone period means the series starts or ends mid-day.
			tomorrow = true
			daily = append(daily, convertSingle(entries[0]))
		case len(entries) >= 2:
			merged := mergePair(entries)
			if merged == nil {
				log.Warnf("day %s is unable to merge periods: %s", day.Format(dayLayout), describePeriods(entries))
				continue
			}
			daily = append(daily, *merged)
		default:
			log.Warnf("day %s has no periods", day.Format(dayLayout))
		}
	}

	return daily, buildSummary(periods, tomorrow)
}

// bucketByDay groups periods under their calendar day. Keys are returned in
// first-seen order, which is also the order of the consolidated output;
// chronological order is only guaranteed when the input is already sorted.
func bucketByDay(periods []Period) ([]time.Time, map[time.Time][]Period) {
	var days []time.Time
	buckets := make(map[time.Time][]Period)

	for _, p := range periods {
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			log.Debugf("skipping period with unparseable timestamp %q: %v", p.Timestamp, err)
			continue
		}

		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		if _, seen := buckets[day]; !seen {
			days = append(days, day)
		}
		buckets[day] = append(buckets[day], p)
	}

	return days, buckets
}

// convertSingle consolidates a day whose bucket holds a single period. A
// night period moves its temperature into TemperatureLow.
func convertSingle(p Period) Period {
	out := p.clone()

	title := "Day"
	if !p.isDay() {
		title = "Night"
		out.TemperatureLow = out.Temperature
		out.Temperature = nil
	}

	out.Description = "### " + title + "\n" + strings.TrimSpace(p.Description)
	out.Daytime = nil
	return out
}

// mergePair consolidates a bucket with at least one day and one night period
// into a single entry based on the day period. When either side is missing
// nil is returned and the caller drops the day. Extra same-flag entries lose
// to the one with the latest timestamp.
func mergePair(entries []Period) *Period {
	day := latestPeriod(entries, true)
	night := latestPeriod(entries, false)
	if day == nil || night == nil {
		return nil
	}

	out := day.clone()
	out.Description = "### Day\n" + strings.TrimSpace(day.Description) +
		"\n\n### Night\n" + strings.TrimSpace(night.Description)
	if night.Temperature != nil {
		v := *night.Temperature
		out.TemperatureLow = &v
	} else {
		out.TemperatureLow = nil
	}
	out.Daytime = nil
	return &out
}

// latestPeriod picks the entry with the given daytime flag whose timestamp is
// the most recent. Ties keep the earliest such entry in input order.
func latestPeriod(entries []Period, daytime bool) *Period {
	var best *Period
	var bestTS time.Time

	for i := range entries {
		p := &entries[i]
		if p.isDay() != daytime {
			continue
		}
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			continue
		}
		if best == nil || ts.After(bestTS) {
			best = p
			bestTS = ts
		}
	}

	return best
}

// buildSummary renders the two-section text summary from the original first
// two periods. When any day resolved through the single-period path the
// series trails into an uncapped period, so the sections shift forward.
func buildSummary(periods []Period, tomorrow bool) string {
	if len(periods) < 2 {
		log.Debugf("not enough periods for a summary: %d", len(periods))
		return ""
	}

	first, second := "Today", "Tonight"
	if tomorrow {
		first, second = "Tonight", "Tomorrow"
	}

	return fmt.Sprintf("### %s\n%s\n### %s\n%s",
		first, periods[0].Description, second, periods[1].Description)
}

func describePeriods(entries []Period) string {
	parts := make([]string, 0, len(entries))
	for _, p := range entries {
		flag := "night"
		if p.isDay() {
			flag = "day"
		}
		parts = append(parts, fmt.Sprintf("{%s %s %q}", p.Timestamp, flag, p.Description))
	}
	return strings.Join(parts, ", ")
}
