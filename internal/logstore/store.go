// Package logstore reads and clears the training log the backend appends to.
//
// Read failures come back as *Error values carrying a Kind, so callers can
// tell "not there yet" and "emptied between classes" apart from a genuine
// I/O failure.
package logstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Kind classifies a soft read error.
type Kind int

const (
	// KindNotFound means the log has not been created yet.
	KindNotFound Kind = iota + 1
	// KindEmpty means the log exists but holds nothing, typically right after
	// it was cleared between classes.
	KindEmpty
	// KindReadFailed is a permission or I/O failure.
	KindReadFailed
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindEmpty:
		return "empty"
	case KindReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// Transient reports whether the condition is expected while a run is
// starting or moving between classes.
func (k Kind) Transient() bool {
	return k == KindNotFound || k == KindEmpty
}

// Error is a soft error from Read.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("File not found: %s", e.Path)
	case KindEmpty:
		return fmt.Sprintf("File is empty: %s", e.Path)
	default:
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// Store is the training log at Path.
type Store struct {
	Path string
}

// New returns a Store for path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Read returns the full log contents.
func (s *Store) Read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &Error{Kind: KindNotFound, Path: s.Path, Err: err}
		}
		return "", &Error{Kind: KindReadFailed, Path: s.Path, Err: err}
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return "", &Error{Kind: KindEmpty, Path: s.Path}
	}
	return content, nil
}

// Clear truncates the log to zero length. A missing log is created empty.
func (s *Store) Clear() error {
	if err := os.Truncate(s.Path, 0); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f, cerr := os.Create(s.Path)
			if cerr != nil {
				return fmt.Errorf("clear training log: %w", cerr)
			}
			return f.Close()
		}
		return fmt.Errorf("clear training log: %w", err)
	}
	return nil
}
