// SPDX-License-Identifier: Unlicense OR MIT

package permission

import (
	"context"
	"sync"
)

// Permission names an operating-system capability.
type Permission string

const (
	// FineLocation gates access to precise device coordinates.
	FineLocation Permission = "android.permission.ACCESS_FINE_LOCATION"
	// CoarseLocation gates access to approximate device coordinates.
	CoarseLocation Permission = "android.permission.ACCESS_COARSE_LOCATION"
)

// Checker queries the current grant state of a permission.
type Checker interface {
	// Granted reports whether p is currently granted. The state is
	// read from the platform on every call.
	Granted(p Permission) bool
}

// Requester asks the user to grant a permission.
type Requester interface {
	// Request presents the platform permission dialog for p and
	// blocks until the user answers or ctx is done. It reports
	// whether the permission was granted.
	Request(ctx context.Context, p Permission) (bool, error)
}

// Manager combines permission checks and requests.
type Manager interface {
	Checker
	Requester
}

// Memory is a Manager for platforms without a permission registry. The
// "dialog" answers every request with Answer; a granted permission stays
// granted for the lifetime of the Memory.
type Memory struct {
	// Answer is the simulated user decision for requests.
	Answer bool

	mu      sync.Mutex
	granted map[Permission]bool
}

// NewMemory returns a Memory with the given permissions already granted.
func NewMemory(answer bool, granted ...Permission) *Memory {
	m := &Memory{
		Answer:  answer,
		granted: make(map[Permission]bool),
	}
	for _, p := range granted {
		m.granted[p] = true
	}
	return m
}

// Granted reports whether p has been granted.
func (m *Memory) Granted(p Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.granted[p]
}

// Request grants p if m.Answer is set and reports whether p is granted.
// A denial keeps an earlier grant.
func (m *Memory) Request(ctx context.Context, p Permission) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.granted == nil {
		m.granted = make(map[Permission]bool)
	}
	if m.Answer {
		m.granted[p] = true
	}
	return m.granted[p], nil
}
