package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
)

// FetchSource supplies consolidated forecasts plus the side summary kept by
// the consolidating source. *forecast.DailySource satisfies it.
type FetchSource interface {
	Name() string
	Forecast(ctx context.Context, loc forecast.Location) ([]forecast.Period, error)
	Summary(loc forecast.Location) string
}

// Store is where refreshed forecasts land.
type Store interface {
	SaveForecast(loc forecast.Location, periods []forecast.Period, summary string)
}

// Scheduler periodically refreshes the forecast for configured points.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    FetchSource
	store     Store
	points    []forecast.Location
	interval  time.Duration
}

// New creates a new Scheduler.
func New(points []forecast.Location, interval time.Duration, source FetchSource, store Store) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		source:    source,
		store:     store,
		points:    points,
		interval:  interval,
	}
}

// Start schedules the periodic refresh, runs it once immediately, and starts
// the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.points) == 0 {
		log.Info("scheduler: no points configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	job, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshAll)
	if err != nil {
		return err
	}
	job.SingletonMode()

	s.scheduler.StartAsync()
	go s.refreshAll()
	return nil
}

func (s *Scheduler) refreshAll() {
	log.Debugf("scheduler: refreshing %d points from %s", len(s.points), s.source.Name())

	var wg sync.WaitGroup
	for _, loc := range s.points {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			periods, err := s.source.Forecast(ctx, loc)
			if err != nil {
				// Keep the last good forecast; partial refreshes are fine.
				log.Warnf("scheduler: refresh failed for %s: %v", loc.Key(), err)
				return
			}

			s.store.SaveForecast(loc, periods, s.source.Summary(loc))
		}()
	}
	wg.Wait()

	log.Debug("scheduler: refresh complete")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
