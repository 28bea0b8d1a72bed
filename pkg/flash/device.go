// Package flash provides the persisted-storage contract the subscription
// store and lockout timer write through: page-granular erase/write, with
// the magic-word-last commit discipline implemented by the callers (the
// magic field is the last field of each slot's encoding, after all of its
// data, per spec §3 I1 and §9 "Flash-commit ordering").
package flash

import "errors"

// ErrWriteFailed is returned when a page write or erase cannot complete.
// Per spec §7, a flash write/erase failure is fatal: callers are expected
// to treat this as a Halt condition, not a recoverable error.
var ErrWriteFailed = errors.New("flash: write or erase failed")

// ErrOutOfRange is returned when an address does not correspond to a valid
// page on the device.
var ErrOutOfRange = errors.New("flash: address out of range")

// Device is a page-granular non-volatile storage contract. Every write
// replaces an entire page; callers are responsible for placing any commit
// marker (a magic word) after all of the data it commits in the bytes they
// pass to WritePage, so
// that an implementation which can only guarantee in-order bytes within a
// single WritePage call still exposes torn writes as a page that reads back
// without the marker.
type Device interface {
	// PageSize returns the fixed page size in bytes.
	PageSize() int

	// ReadPage reads exactly PageSize() bytes starting at addr.
	ReadPage(addr uint32) ([]byte, error)

	// ErasePage resets the page at addr to its erased (zero) state.
	ErasePage(addr uint32) error

	// WritePage erases and writes data (which must be exactly PageSize()
	// bytes) to the page at addr.
	WritePage(addr uint32, data []byte) error
}
