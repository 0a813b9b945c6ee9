// SPDX-License-Identifier: Unlicense OR MIT

//go:build !android

package platform

func newNative() (Native, error) {
	return nil, ErrUnsupported
}
