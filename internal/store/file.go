package store

import (
	"bytes"
	"fmt"
	"os"
)

// File keeps an EEPROM image in a regular file. Missing bytes read as the
// erased value 0xFF, so a fresh file behaves like a blank chip.
type File struct {
	f    *os.File
	size int
}

// OpenFile opens or creates the image at path.
func OpenFile(path string, size int) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("file store size %d out of range", size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store image: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat store image: %w", err)
	}
	if st.Size() < int64(size) {
		pad := bytes.Repeat([]byte{Erased}, size-int(st.Size()))
		if _, err := f.WriteAt(pad, st.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend store image: %w", err)
		}
	}
	return &File{f: f, size: size}, nil
}

func (s *File) Read(addr int) (byte, error) {
	if err := checkAddr(addr, s.size); err != nil {
		return 0, err
	}
	b := make([]byte, 1)
	if _, err := s.f.ReadAt(b, int64(addr)); err != nil {
		return 0, fmt.Errorf("read store image at %d: %w", addr, err)
	}
	return b[0], nil
}

func (s *File) Write(addr int, b byte) error {
	if err := checkAddr(addr, s.size); err != nil {
		return err
	}
	if _, err := s.f.WriteAt([]byte{b}, int64(addr)); err != nil {
		return fmt.Errorf("write store image at %d: %w", addr, err)
	}
	return s.f.Sync()
}

// Close closes the image file.
func (s *File) Close() error {
	return s.f.Close()
}
