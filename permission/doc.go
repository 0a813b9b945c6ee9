// SPDX-License-Identifier: Unlicense OR MIT

/*
Package permission defines the checks and requests for operating-system
permissions used by the location program.

The manifest entry for ACCESS_FINE_LOCATION is added by package
gioui.org/example/location/platform when the program is built with gogio.

Android -- Dangerous Permissions

ACCESS_FINE_LOCATION has a protection level of "dangerous". Declaring it
in the manifest is not enough: the user must be prompted at runtime
through a Requester. Checker reports the current state without
prompting. See package gioui.org/example/location/platform for the
Android implementation.

Other platforms have no runtime permission registry. Memory stands in
for it with a state and a scripted dialog answer.
*/
package permission
