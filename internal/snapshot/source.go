package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/roach88/viewcheck/public"
)

// DomainSnapshot prefixes snapshot digests so they never collide with other
// hashes computed over the same bytes.
const DomainSnapshot = "viewcheck/snapshot/v1"

// Kind classifies load failures.
type Kind string

const (
	// KindNotFound means the path does not exist or names a directory.
	KindNotFound Kind = "NOT_FOUND"

	// KindRead means the file exists but could not be read as UTF-8 text.
	KindRead Kind = "READ_ERROR"
)

// Sentinel errors matched by LoadError.Is.
var (
	ErrNotFound = errors.New("snapshot not found")
	ErrRead     = errors.New("snapshot unreadable")
)

// LoadError reports why a snapshot could not be loaded.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a LoadError against ErrNotFound or ErrRead.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrRead:
		return e.Kind == KindRead
	}
	return false
}

// Source is an immutable markup snapshot.
type Source struct {
	path   string
	markup string
	digest string
}

// Load reads the snapshot at path.
func Load(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Kind: KindNotFound, Path: path, Err: err}
		}
		return nil, &LoadError{Kind: KindRead, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Kind: KindNotFound, Path: path, Err: fmt.Errorf("is a directory")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Kind: KindRead, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Kind: KindRead, Path: path, Err: fmt.Errorf("not valid UTF-8")}
	}

	return FromString(path, string(data)), nil
}

// FromString wraps literal markup. name is used wherever a path would be.
func FromString(name, markup string) *Source {
	return &Source{
		path:   name,
		markup: markup,
		digest: digest(markup),
	}
}

// Default returns the embedded dashboard snapshot.
func Default() *Source {
	return FromString(public.IndexPath, public.Index())
}

// Path returns the file path (or name) the markup came from.
func (s *Source) Path() string { return s.path }

// Markup returns the full markup text.
func (s *Source) Markup() string { return s.markup }

// Digest returns the hex SHA-256 of the markup, domain separated.
func (s *Source) Digest() string { return s.digest }

// Len returns the markup size in bytes.
func (s *Source) Len() int { return len(s.markup) }

// digest computes SHA256(domain + 0x00 + markup).
func digest(markup string) string {
	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write([]byte(markup))
	return hex.EncodeToString(h.Sum(nil))
}
