// Package scheduler runs the nightly KPI rollup and token housekeeping.
package scheduler

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

const jobTimeout = 5 * time.Minute

// Roller writes the daily_metrics row for one calendar day.
type Roller interface {
	Rollup(ctx context.Context, day time.Time) (*models.DailyMetric, error)
}

// TokenPurger deletes expired access tokens.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	Location *time.Location
	// RollupHour and RollupMinute give the local wall-clock time of the nightly rollup.
	RollupHour   uint
	RollupMinute uint
	// PurgeEvery is the token cleanup interval; zero disables it.
	PurgeEvery time.Duration
}

type Scheduler struct {
	cron   gocron.Scheduler
	roller Roller
	purger TokenPurger
	loc    *time.Location
	now    func() time.Time
}

// New registers the jobs. A nil roller leaves only the token purge.
// Nothing runs until Start.
func New(cfg Config, roller Roller, purger TokenPurger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	s := &Scheduler{cron: cron, roller: roller, purger: purger, loc: loc, now: time.Now}

	if roller != nil {
		_, err = cron.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(cfg.RollupHour, cfg.RollupMinute, 0))),
			gocron.NewTask(s.RunRollup),
			gocron.WithName("daily-rollup"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cron.Shutdown()
			return nil, err
		}
	}

	if purger != nil && cfg.PurgeEvery > 0 {
		_, err = cron.NewJob(
			gocron.DurationJob(cfg.PurgeEvery),
			gocron.NewTask(s.RunPurge),
			gocron.WithName("token-purge"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cron.Shutdown()
			return nil, err
		}
	}

	fields := logrus.Fields{"timezone": loc.String(), "jobs": s.JobNames()}
	if roller != nil {
		fields["rollup_at"] = time.Date(0, 1, 1, int(cfg.RollupHour), int(cfg.RollupMinute), 0, 0, loc).Format("15:04")
	}
	log.WithFields(fields).Info("Scheduler configured")
	return s, nil
}

// JobNames lists the registered jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.cron.Jobs()
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

// RunRollup aggregates the previous local day.
func (s *Scheduler) RunRollup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if s.roller == nil {
		return
	}
	day := s.now().In(s.loc).AddDate(0, 0, -1)
	metric, err := s.roller.Rollup(ctx, day)
	if err != nil {
		log.WithError(err).WithField("day", day.Format("2006-01-02")).Error("Daily rollup failed")
		return
	}
	log.WithFields(logrus.Fields{
		"day":    day.Format("2006-01-02"),
		"orders": metric.TotalOrders,
	}).Info("Daily rollup written")
}

func (s *Scheduler) RunPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.purger.PurgeExpired(ctx, s.now())
	if err != nil {
		log.WithError(err).Warn("Token purge failed")
		return
	}
	if n > 0 {
		log.WithField("deleted", n).Info("Expired tokens purged")
	}
}
