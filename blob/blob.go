// Package blob turns generated media into playable, revocable resources.
//
// A Handle owns one resource (a temp file or an uploaded object) and must be
// released when it is superseded or its owner goes away.
package blob

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Store creates playable resources from raw bytes.
type Store interface {
	Create(ctx context.Context, name string, data []byte, contentType string) (*Handle, error)
}

// Handle is a playable locator plus the means to revoke it.
type Handle struct {
	URL string

	once     sync.Once
	release  func() error
	released bool
	mu       sync.Mutex
}

// NewHandle wraps url with a release function. release may be nil for
// locators that need no cleanup.
func NewHandle(url string, release func() error) *Handle {
	return &Handle{URL: url, release: release}
}

// Release revokes the resource. Only the first call does any work.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	var err error
	h.once.Do(func() {
		if h.release != nil {
			err = h.release()
		}
		h.mu.Lock()
		h.released = true
		h.mu.Unlock()
	})
	return err
}

// Released reports whether Release has run.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Scope owns a group of handles that share one lifetime, such as everything
// a view created while it was open.
type Scope struct {
	mu      sync.Mutex
	handles []*Handle
	closed  bool
}

// Adopt ties h to the scope. Adopting into a closed scope releases h at once.
func (s *Scope) Adopt(h *Handle) *Handle {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = h.Release()
		return h
	}
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return h
}

// Close releases every adopted handle.
func (s *Scope) Close() error {
	s.mu.Lock()
	handles := s.handles
	s.handles = nil
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var extensions = map[string]string{
	"audio/mpeg": ".mp3",
	"audio/mp3":  ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"video/mp4":  ".mp4",
}

// extension picks a file suffix for a content type; players sniff the rest.
func extension(contentType string) string {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if ext, ok := extensions[strings.ToLower(ct)]; ok {
		return ext
	}
	if strings.HasPrefix(ct, "video/") {
		return ".mp4"
	}
	return ".mp3"
}

// safeName keeps names usable as file names and object keys.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "media"
	}
	return b.String()
}
