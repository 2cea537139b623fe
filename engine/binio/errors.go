package binio

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinels matched by errors.Is against the typed decode errors below.
var (
	ErrFormat       = errors.New("format error")
	ErrTruncated    = errors.New("truncated data")
	ErrNotFound     = errors.New("not found")
	ErrInconsistent = errors.New("inconsistent data")
)

// FormatError reports a header, magic or length mismatch.
type FormatError struct {
	Asset  string
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: format error at 0x%x: %s", e.Asset, e.Offset, e.Msg)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// TruncatedDataError reports a declared offset or length past the end of the buffer.
type TruncatedDataError struct {
	Asset  string
	Offset int64
	Need   int64
	Have   int64
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("%s: truncated at 0x%x: need %d bytes, have %d", e.Asset, e.Offset, e.Need, e.Have)
}

func (e *TruncatedDataError) Is(target error) bool { return target == ErrTruncated }

// NotFoundError reports a failed name lookup or a missing required input such as a palette.
type NotFoundError struct {
	Asset string
	Name  string
}

func (e *NotFoundError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("%s: not found", e.Name)
	}
	return fmt.Sprintf("%s: %s not found", e.Asset, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InconsistentDataError reports decoded data that disagrees with its declared shape.
type InconsistentDataError struct {
	Asset  string
	Offset int64
	Msg    string
}

func (e *InconsistentDataError) Error() string {
	return fmt.Sprintf("%s: inconsistent data at 0x%x: %s", e.Asset, e.Offset, e.Msg)
}

func (e *InconsistentDataError) Is(target error) bool { return target == ErrInconsistent }

// Formatf builds a FormatError.
func Formatf(asset string, off int64, format string, args ...interface{}) error {
	return &FormatError{Asset: asset, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Inconsistentf builds an InconsistentDataError.
func Inconsistentf(asset string, off int64, format string, args ...interface{}) error {
	return &InconsistentDataError{Asset: asset, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Truncated builds a TruncatedDataError for a read of need bytes at off.
func Truncated(asset string, off, need, have int64) error {
	return &TruncatedDataError{Asset: asset, Offset: off, Need: need, Have: have}
}

// NotFound builds a NotFoundError.
func NotFound(asset, name string) error {
	return &NotFoundError{Asset: asset, Name: name}
}

// Range checks that [off, off+n) lies inside a buffer of size total.
func Range(asset string, off, n, total int64) error {
	if off < 0 || n < 0 || off+n > total {
		have := total - off
		if have < 0 || off < 0 {
			have = 0
		}
		return Truncated(asset, off, n, have)
	}
	return nil
}
