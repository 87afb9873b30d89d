// +build linux darwin

package shmem

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// createSegment creates and maps a fresh segment file of the given total size.
func createSegment(path string, size int) (*Segment, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating segment file [%s]", path)
	}
	defer func() { _ = f.Close() }()

	if err := f.Truncate(int64(size)); err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrapf(err, "error sizing segment file [%s]", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrapf(err, "error mapping segment file [%s]", path)
	}

	return &Segment{path: path, data: data}, nil
}

// OpenSegment maps an existing segment file, validating its header.
func OpenSegment(path string) (*Segment, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening segment file [%s]", path)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "error examining segment file [%s]", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "error mapping segment file [%s]", path)
	}

	segment := &Segment{path: path, data: data}
	if err := segment.validate(); err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	return segment, nil
}

// Unmap releases the mapping, leaving the segment file in place for other mappers.
func (self *Segment) Unmap() error {
	if self.data == nil {
		return nil
	}
	data := self.data
	self.data = nil
	if err := unix.Munmap(data); err != nil {
		return errors.Wrapf(err, "error unmapping segment [%s]", self.path)
	}
	return nil
}

// destroy unmaps and unlinks the segment file.
func (self *Segment) destroy() error {
	if err := self.Unmap(); err != nil {
		return err
	}
	if err := os.Remove(self.path); err != nil {
		return errors.Wrapf(err, "error removing segment [%s]", self.path)
	}
	return nil
}
