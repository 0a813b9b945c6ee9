// SPDX-License-Identifier: Unlicense OR MIT

// Package screen implements the state of the location screen: the
// permission check on press, the permission request, and the fetch of
// the last known location.
//
// A Screen is owned by the UI goroutine. Requests and fetches run in
// their own goroutines and queue their single result; Update applies
// queued results on the UI goroutine.
package screen

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gioui.org/example/location/location"
	"gioui.org/example/location/permission"
)

// Notices shown to the user.
const (
	NoticeAlreadyGranted = "Permission already granted"
	NoticeNotGranted     = "Permission not granted"
	NoticeDenied         = "Permission denied"
)

// Options configures a Screen.
type Options struct {
	// Refresh lets a press fetch again when a location is already
	// displayed. By default the first displayed location is final.
	Refresh bool
	// Log receives diagnostics. Nil discards them.
	Log logrus.FieldLogger
	// Invalidate is called, from any goroutine, after a result is
	// queued for Update.
	Invalidate func()
	// Notify shows a transient notice. It is called on the goroutine
	// calling Press or Update.
	Notify func(msg string)
}

type resultKind uint8

const (
	answered resultKind = iota
	fetched
)

type result struct {
	kind    resultKind
	attempt string
	granted bool
	fix     location.Fix
	ok      bool
}

// Screen is the location screen state.
type Screen struct {
	perms    permission.Manager
	provider location.Provider
	opts     Options
	log      logrus.FieldLogger

	display string
	busy    bool
	ctx     context.Context
	results chan result
}

// New returns a Screen with an empty display.
func New(perms permission.Manager, provider location.Provider, opts Options) *Screen {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Screen{
		perms:    perms,
		provider: provider,
		opts:     opts,
		log:      log.WithField("provider", fmt.Sprintf("%T", provider)),
		// At most one request and one fetch are outstanding.
		results: make(chan result, 2),
	}
}

// Display returns the text of the location field.
func (s *Screen) Display() string {
	return s.display
}

// Busy reports whether a permission request or a fetch is in flight.
func (s *Screen) Busy() bool {
	return s.busy
}

// Press handles a press of the location button. It reports whether
// the press started a request or a fetch; presses while busy, and
// presses once a location is displayed unless Options.Refresh is set,
// do nothing.
func (s *Screen) Press(ctx context.Context) bool {
	if s.display != "" && !s.opts.Refresh {
		return false
	}
	if s.busy {
		return false
	}
	attempt := uuid.NewString()
	s.busy = true
	s.ctx = ctx
	log := s.log.WithField("attempt", attempt)
	if s.perms.Granted(permission.FineLocation) {
		log.Debug("permission already granted")
		s.notify(NoticeAlreadyGranted)
		s.startFetch(attempt)
		return true
	}
	log.Debug("permission not granted, requesting")
	s.notify(NoticeNotGranted)
	go s.request(ctx, attempt)
	return true
}

// Update applies the results queued since the last call and reports
// whether the screen changed. It must be called on the UI goroutine.
func (s *Screen) Update() bool {
	changed := false
	for {
		select {
		case r := <-s.results:
			if s.apply(r) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (s *Screen) apply(r result) bool {
	switch r.kind {
	case answered:
		if !r.granted {
			s.busy = false
			s.notify(NoticeDenied)
			return true
		}
		s.startFetch(r.attempt)
		return false
	case fetched:
		s.busy = false
		if !r.ok {
			return false
		}
		s.display = r.fix.Coordinate.String()
		return true
	}
	return false
}

func (s *Screen) startFetch(attempt string) {
	go s.fetch(s.ctx, attempt)
}

func (s *Screen) request(ctx context.Context, attempt string) {
	log := s.log.WithField("attempt", attempt)
	granted, err := s.perms.Request(ctx, permission.FineLocation)
	if err != nil {
		log.WithError(err).Warn("permission request failed")
		granted = false
	}
	log.WithField("granted", granted).Debug("permission request answered")
	s.queue(result{kind: answered, attempt: attempt, granted: granted})
}

func (s *Screen) fetch(ctx context.Context, attempt string) {
	log := s.log.WithField("attempt", attempt)
	r := result{kind: fetched, attempt: attempt}
	defer func() { s.queue(r) }()

	if !s.perms.Granted(permission.FineLocation) {
		log.Debug("permission revoked before fetch")
		return
	}
	fix, err := s.provider.LastKnown(ctx)
	switch {
	case errors.Is(err, location.ErrNoLocation):
		log.Debug("no last known location")
	case err != nil:
		log.WithError(err).Error("failed to get last known location")
	default:
		log.WithFields(logrus.Fields{
			"latitude":  fix.Latitude,
			"longitude": fix.Longitude,
		}).Info("got last known location")
		r.fix, r.ok = fix, true
	}
}

func (s *Screen) queue(r result) {
	s.results <- r
	if s.opts.Invalidate != nil {
		s.opts.Invalidate()
	}
}

func (s *Screen) notify(msg string) {
	if s.opts.Notify != nil {
		s.opts.Notify(msg)
	}
}
