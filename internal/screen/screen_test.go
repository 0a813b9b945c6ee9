// SPDX-License-Identifier: Unlicense OR MIT

package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gioui.org/example/location/location"
	"gioui.org/example/location/permission"
)

type mockPermissions struct {
	mock.Mock
}

func (m *mockPermissions) Granted(p permission.Permission) bool {
	return m.Called(p).Bool(0)
}

func (m *mockPermissions) Request(ctx context.Context, p permission.Permission) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	args := m.Called(ctx)
	return args.Get(0).(location.Fix), args.Error(1)
}

type harness struct {
	s       *Screen
	perms   *mockPermissions
	prov    *mockProvider
	hook    *logtest.Hook
	wake    chan struct{}
	notices []string
}

func newHarness(t *testing.T, refresh bool) *harness {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h := &harness{
		perms: new(mockPermissions),
		prov:  new(mockProvider),
		hook:  hook,
		wake:  make(chan struct{}, 4),
	}
	h.s = New(h.perms, h.prov, Options{
		Refresh:    refresh,
		Log:        logger,
		Invalidate: func() { h.wake <- struct{}{} },
		Notify:     func(msg string) { h.notices = append(h.notices, msg) },
	})
	return h
}

// settle waits for one queued result and applies it.
func (h *harness) settle(t *testing.T) bool {
	t.Helper()
	select {
	case <-h.wake:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
	}
	return h.s.Update()
}

var sydney = location.Fix{Coordinate: location.Coordinate{Latitude: -33.8688, Longitude: 151.2093}}

func TestPressGranted(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(true)
	h.prov.On("LastKnown", mock.Anything).Return(sydney, nil).Once()

	require.True(t, h.s.Press(context.Background()))
	assert.True(t, h.s.Busy())
	assert.True(t, h.settle(t))

	assert.Equal(t, "Latitude: -33.8688, Longitude: 151.2093", h.s.Display())
	assert.False(t, h.s.Busy())
	assert.Equal(t, []string{NoticeAlreadyGranted}, h.notices)
	h.perms.AssertNotCalled(t, "Request", mock.Anything, mock.Anything)
	h.prov.AssertExpectations(t)
}

func TestPressNotGrantedOnlyRequests(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(false)
	release := make(chan time.Time)
	h.perms.On("Request", mock.Anything, permission.FineLocation).
		WaitUntil(release).Return(false, nil).Once()

	require.True(t, h.s.Press(context.Background()))
	assert.Equal(t, []string{NoticeNotGranted}, h.notices)

	// The dialog is open; further presses are ignored.
	assert.False(t, h.s.Press(context.Background()))
	close(release)
	h.settle(t)

	h.prov.AssertNotCalled(t, "LastKnown", mock.Anything)
	h.perms.AssertNumberOfCalls(t, "Request", 1)
}

func TestGrantFetchesOnce(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(false).Once()
	h.perms.On("Request", mock.Anything, permission.FineLocation).Return(true, nil).Once()
	h.perms.On("Granted", permission.FineLocation).Return(true)
	h.prov.On("LastKnown", mock.Anything).Return(sydney, nil).Once()

	require.True(t, h.s.Press(context.Background()))
	assert.False(t, h.settle(t), "grant alone must not change the display")
	assert.True(t, h.s.Busy())
	assert.True(t, h.settle(t))

	assert.Equal(t, sydney.Coordinate.String(), h.s.Display())
	h.prov.AssertNumberOfCalls(t, "LastKnown", 1)
	assert.Equal(t, []string{NoticeNotGranted}, h.notices)
}

func TestDenyLeavesDisplayEmpty(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(false)
	h.perms.On("Request", mock.Anything, permission.FineLocation).Return(false, nil).Once()

	require.True(t, h.s.Press(context.Background()))
	h.settle(t)

	assert.Empty(t, h.s.Display())
	assert.False(t, h.s.Busy())
	assert.Equal(t, []string{NoticeNotGranted, NoticeDenied}, h.notices)
	h.prov.AssertNotCalled(t, "LastKnown", mock.Anything)
}

func TestRequestErrorIsDenial(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(false)
	h.perms.On("Request", mock.Anything, permission.FineLocation).Return(false, errors.New("no activity")).Once()

	require.True(t, h.s.Press(context.Background()))
	h.settle(t)

	assert.Empty(t, h.s.Display())
	assert.Contains(t, h.notices, NoticeDenied)
	h.prov.AssertNotCalled(t, "LastKnown", mock.Anything)
}

func TestGateAfterDisplay(t *testing.T) {
	for _, granted := range []bool{true, false} {
		h := newHarness(t, false)
		h.perms.On("Granted", permission.FineLocation).Return(true).Once()
		h.perms.On("Granted", permission.FineLocation).Return(true).Once()
		h.perms.On("Granted", permission.FineLocation).Return(granted)
		h.prov.On("LastKnown", mock.Anything).Return(sydney, nil).Once()

		require.True(t, h.s.Press(context.Background()))
		h.settle(t)
		require.NotEmpty(t, h.s.Display())

		for i := 0; i < 3; i++ {
			assert.False(t, h.s.Press(context.Background()))
		}
		assert.Len(t, h.notices, 1)
		h.prov.AssertNumberOfCalls(t, "LastKnown", 1)
		h.perms.AssertNotCalled(t, "Request", mock.Anything, mock.Anything)
	}
}

func TestRefresh(t *testing.T) {
	h := newHarness(t, true)
	paris := location.Fix{Coordinate: location.Coordinate{Latitude: 48.8566, Longitude: 2.3522}}
	h.perms.On("Granted", permission.FineLocation).Return(true)
	h.prov.On("LastKnown", mock.Anything).Return(sydney, nil).Once()
	h.prov.On("LastKnown", mock.Anything).Return(paris, nil).Once()

	require.True(t, h.s.Press(context.Background()))
	h.settle(t)
	require.True(t, h.s.Press(context.Background()))
	h.settle(t)

	assert.Equal(t, "Latitude: 48.8566, Longitude: 2.3522", h.s.Display())
	h.prov.AssertExpectations(t)
}

func TestNoCachedLocation(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(true)
	h.prov.On("LastKnown", mock.Anything).Return(location.Fix{}, location.ErrNoLocation).Once()

	require.True(t, h.s.Press(context.Background()))
	assert.False(t, h.settle(t))

	assert.Empty(t, h.s.Display())
	assert.False(t, h.s.Busy())
	assert.Equal(t, []string{NoticeAlreadyGranted}, h.notices)
	for _, e := range h.hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level, "unexpected entry %q", e.Message)
	}
}

func TestProviderErrorIsLogged(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(true)
	h.prov.On("LastKnown", mock.Anything).Return(location.Fix{}, errors.New("location service unavailable")).Once()

	require.True(t, h.s.Press(context.Background()))
	assert.False(t, h.settle(t))

	assert.Empty(t, h.s.Display())
	assert.Equal(t, []string{NoticeAlreadyGranted}, h.notices)

	var found *logrus.Entry
	for _, e := range h.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			found = e
		}
	}
	require.NotNil(t, found, "provider error was not logged")
	assert.EqualError(t, found.Data[logrus.ErrorKey].(error), "location service unavailable")
	assert.NotEmpty(t, found.Data["attempt"])

	// A failed fetch leaves the button usable.
	h.prov.On("LastKnown", mock.Anything).Return(sydney, nil).Once()
	require.True(t, h.s.Press(context.Background()))
	h.settle(t)
	assert.Equal(t, sydney.Coordinate.String(), h.s.Display())
}

func TestFetchRechecksPermission(t *testing.T) {
	h := newHarness(t, false)
	h.perms.On("Granted", permission.FineLocation).Return(true).Once()
	h.perms.On("Granted", permission.FineLocation).Return(false)

	require.True(t, h.s.Press(context.Background()))
	assert.False(t, h.settle(t))

	assert.Empty(t, h.s.Display())
	assert.False(t, h.s.Busy())
	h.prov.AssertNotCalled(t, "LastKnown", mock.Anything)
}

func TestNilLogger(t *testing.T) {
	p := permission.NewMemory(true)
	wake := make(chan struct{}, 4)
	s := New(p, location.NewStatic(sydney.Coordinate), Options{
		Invalidate: func() { wake <- struct{}{} },
	})
	require.True(t, s.Press(context.Background()))
	for s.Display() == "" {
		select {
		case <-wake:
			s.Update()
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a result")
		}
	}
	assert.Equal(t, sydney.Coordinate.String(), s.Display())
}
