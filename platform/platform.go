// SPDX-License-Identifier: Unlicense OR MIT

/*
Package platform connects the location program to the permission
registry and location provider of the host operating system.

On Android, New returns an implementation backed by
Context.checkSelfPermission, Activity.requestPermissions and
LocationManager.getLastKnownLocation. The Java half lives in
LocationHelper.java and is compiled by go generate into location_android.jar, which
gogio bundles with the program. The program must forward every window
event to Native.Event so that permission dialogs can be attached to the
current activity.

Importing platform adds the following entries to AndroidManifest.xml
through gioui.org/app/permission/bluetooth, the gogio permission set
that declares fine location access:

	<uses-permission android:name="android.permission.ACCESS_FINE_LOCATION"/>
	<uses-permission android:name="android.permission.BLUETOOTH"/>
	<uses-permission android:name="android.permission.BLUETOOTH_ADMIN"/>

Programs built with gogio -buildmode archive may declare
ACCESS_FINE_LOCATION in their own manifest instead.

On other platforms New returns ErrUnsupported.
*/
package platform

import (
	"errors"

	"gioui.org/io/event"

	// Declares ACCESS_FINE_LOCATION in gogio-built manifests.
	_ "gioui.org/app/permission/bluetooth"

	"gioui.org/example/location/location"
	"gioui.org/example/location/permission"
)

//go:generate javac -source 8 -target 8 -bootclasspath $ANDROID_HOME/platforms/android-33/android.jar -d $TEMP/location/classes LocationHelper.java
//go:generate jar cf location_android.jar -C $TEMP/location/classes .

// ErrUnsupported is returned by New on platforms without a native
// permission registry and location provider.
var ErrUnsupported = errors.New("platform: not supported")

// Native is the operating-system permission registry and location
// provider.
type Native interface {
	permission.Manager
	location.Provider
	// Event observes a window event.
	Event(e event.Event)
}

// New returns the native implementation for the running platform.
func New() (Native, error) {
	return newNative()
}
