package flash

import (
	"io"
	"os"
)

// File is a Device backed by a flat file, one region per page address,
// used by cmd/decoder so the subscription table and lockout counter
// survive a process restart the way the real flash image does across a
// device reset.
type File struct {
	f        *os.File
	pageSize int
}

// OpenFile opens (creating if necessary) a file-backed device spanning
// totalSize bytes, addressed in pageSize-byte pages starting at offset 0.
func OpenFile(path string, pageSize int, totalSize int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < totalSize {
		if err := f.Truncate(totalSize); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &File{f: f, pageSize: pageSize}, nil
}

// Close closes the underlying file.
func (d *File) Close() error {
	return d.f.Close()
}

// PageSize implements Device.
func (d *File) PageSize() int { return d.pageSize }

// ReadPage implements Device.
func (d *File) ReadPage(addr uint32) ([]byte, error) {
	buf := make([]byte, d.pageSize)
	if _, err := d.f.ReadAt(buf, int64(addr)); err != nil && err != io.EOF {
		return nil, ErrOutOfRange
	}
	return buf, nil
}

// ErasePage implements Device.
func (d *File) ErasePage(addr uint32) error {
	zero := make([]byte, d.pageSize)
	if _, err := d.f.WriteAt(zero, int64(addr)); err != nil {
		return ErrWriteFailed
	}
	return nil
}

// WritePage implements Device.
func (d *File) WritePage(addr uint32, data []byte) error {
	if len(data) != d.pageSize {
		return ErrWriteFailed
	}
	if err := d.ErasePage(addr); err != nil {
		return err
	}
	if _, err := d.f.WriteAt(data, int64(addr)); err != nil {
		return ErrWriteFailed
	}
	if err := d.f.Sync(); err != nil {
		return ErrWriteFailed
	}
	return nil
}
