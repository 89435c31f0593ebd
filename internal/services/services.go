package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// Actor identifies who performed an operation. UserID is nil for public requests.
type Actor struct {
	UserID   *uint
	Username string
}

// PublicActor is used for customer-facing submissions.
var PublicActor = Actor{Username: "public"}

// StaffActor builds an actor from an authenticated user id.
func StaffActor(userID uint, username string) Actor {
	id := userID
	if username == "" {
		username = fmt.Sprintf("user#%d", userID)
	}
	return Actor{UserID: &id, Username: username}
}

func (a Actor) Label() string {
	if a.Username != "" {
		return a.Username
	}
	if a.UserID != nil {
		return fmt.Sprintf("user#%d", *a.UserID)
	}
	return "system"
}

// Option configures time handling for services that read the clock.
type Option func(*options)

type options struct {
	now func() time.Time
	loc *time.Location
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone used for calendar-day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
