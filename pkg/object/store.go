package object

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned (wrapped) when an object or prefix has no match.
	ErrNotFound = errors.New("object not found")
	// ErrAmbiguous is returned (wrapped) when a prefix matches several ids.
	ErrAmbiguous = errors.New("ambiguous object prefix")
	// ErrCorrupt is returned (wrapped) when stored bytes do not hash to their id.
	ErrCorrupt = errors.New("corrupt object")
)

// Store is a content-addressed object store. Each object kind lives in its
// own collection with a 2-character fan-out directory layout:
// objects/<type>/ab/cdef0123...
type Store struct {
	root     string
	format   Format
	compress bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFormat selects the hash function used for object ids.
func WithFormat(f Format) StoreOption {
	return func(s *Store) {
		if f.Valid() {
			s.format = f
		}
	}
}

// WithCompression toggles zstd compression of newly written objects.
// Reads always accept both compressed and plain objects.
func WithCompression(on bool) StoreOption {
	return func(s *Store) { s.compress = on }
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectories are created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, format: FormatSHA256, compress: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Format returns the hash function the store derives ids with.
func (s *Store) Format() Format {
	return s.format
}

// HashOf returns the id data would be stored under, without writing it.
func (s *Store) HashOf(objType ObjectType, data []byte) Hash {
	return HashObject(s.format, objType, data)
}

func (s *Store) collectionDir(objType ObjectType) string {
	return filepath.Join(s.root, "objects", string(objType))
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(objType ObjectType, h Hash) string {
	return filepath.Join(s.collectionDir(objType), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object of the given type.
func (s *Store) Has(objType ObjectType, h Hash) bool {
	if !isHexHash(string(h)) {
		return false
	}
	_, err := os.Stat(s.objectPath(objType, h))
	return err == nil
}

// Write stores an object and returns its content hash. Writing an id that
// already exists is a no-op. The on-disk format is "type len\0content",
// zstd-compressed when compression is on. Writes are atomic: data is written
// to a temp file and then renamed into place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := s.HashOf(objType, data)

	// Fast path: already exists.
	if s.Has(objType, h) {
		return h, nil
	}

	raw := append([]byte(fmt.Sprintf("%s %d\x00", objType, len(data))), data...)
	if s.compress {
		compressed, err := compressZstd(raw)
		if err != nil {
			return "", fmt.Errorf("object write compress: %w", err)
		}
		raw = compressed
	}

	dir := filepath.Join(s.collectionDir(objType), string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(objType, h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves the content of an object. A missing object yields an error
// wrapping ErrNotFound.
func (s *Store) Read(objType ObjectType, h Hash) ([]byte, error) {
	if !isHexHash(string(h)) {
		return nil, fmt.Errorf("object read %s %q: %w", objType, h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(objType, h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object read %s %s: %w", objType, h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s %s: %w", objType, h, err)
	}

	if isZstdFrame(raw) {
		raw, err = decompressZstd(raw)
		if err != nil {
			return nil, fmt.Errorf("object read %s: decompress: %w", h, err)
		}
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typ, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	if ObjectType(typ) != objType {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, typ, objType)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return nil, fmt.Errorf("object read %s: invalid length %q: %w", h, lenStr, err)
	}
	if len(content) != length {
		return nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return content, nil
}

// Verify re-reads an object and checks that its content still hashes to h.
func (s *Store) Verify(objType ObjectType, h Hash) error {
	data, err := s.Read(objType, h)
	if err != nil {
		return err
	}
	if got := s.HashOf(objType, data); got != h {
		return fmt.Errorf("object %s %s: %w (content hashes to %s)", objType, h, ErrCorrupt, got)
	}
	return nil
}

// Delete removes an object. Deleting an absent object is not an error.
func (s *Store) Delete(objType ObjectType, h Hash) error {
	if !isHexHash(string(h)) {
		return nil
	}
	p := s.objectPath(objType, h)
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("object delete %s %s: %w", objType, h, err)
	}
	// Drop the fan-out directory once it is empty.
	_ = os.Remove(filepath.Dir(p))
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.Read(TypeBlob, h)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.Read(TypeCommit, h)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Enumeration
// ---------------------------------------------------------------------------

// List returns every id in the collection for objType, sorted.
func (s *Store) List(objType ObjectType) ([]Hash, error) {
	var out []Hash
	err := s.walk(objType, func(h Hash, _ int64) {
		out = append(out, h)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ListCommits returns every commit id in the store, sorted.
func (s *Store) ListCommits() ([]Hash, error) {
	return s.List(TypeCommit)
}

// ResolveCommitPrefix expands an abbreviated commit id. It fails with
// ErrNotFound when nothing matches and ErrAmbiguous when more than one
// commit shares the prefix.
func (s *Store) ResolveCommitPrefix(prefix string) (Hash, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || !isHex(prefix) || len(prefix) > HexLen {
		return "", fmt.Errorf("resolve commit %q: %w", prefix, ErrNotFound)
	}
	if len(prefix) == HexLen {
		if s.Has(TypeCommit, Hash(prefix)) {
			return Hash(prefix), nil
		}
		return "", fmt.Errorf("resolve commit %s: %w", prefix, ErrNotFound)
	}

	var candidates []Hash
	if len(prefix) < 2 {
		all, err := s.ListCommits()
		if err != nil {
			return "", err
		}
		for _, h := range all {
			if strings.HasPrefix(string(h), prefix) {
				candidates = append(candidates, h)
			}
		}
	} else {
		dir := filepath.Join(s.collectionDir(TypeCommit), prefix[:2])
		entries, err := os.ReadDir(dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("resolve commit %q: %w", prefix, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			if strings.HasPrefix(name, prefix[2:]) {
				candidates = append(candidates, Hash(prefix[:2]+name))
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("resolve commit %q: %w", prefix, ErrNotFound)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("resolve commit %q: %w (%d candidates)", prefix, ErrAmbiguous, len(candidates))
	}
}

// CollectionStats summarises one object collection on disk.
type CollectionStats struct {
	Count int
	Bytes int64
}

// StoreStats summarises the whole store.
type StoreStats struct {
	Blobs   CollectionStats
	Commits CollectionStats
}

// Stats counts objects and their on-disk size per collection.
func (s *Store) Stats() (StoreStats, error) {
	var st StoreStats
	if err := s.walk(TypeBlob, func(_ Hash, size int64) {
		st.Blobs.Count++
		st.Blobs.Bytes += size
	}); err != nil {
		return StoreStats{}, err
	}
	if err := s.walk(TypeCommit, func(_ Hash, size int64) {
		st.Commits.Count++
		st.Commits.Bytes += size
	}); err != nil {
		return StoreStats{}, err
	}
	return st, nil
}

// walk visits every stored object of objType, skipping in-flight temp files.
func (s *Store) walk(objType ObjectType, fn func(h Hash, size int64)) error {
	root := s.collectionDir(objType)
	fanout, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("list %s objects: %w", objType, err)
	}
	for _, d := range fanout {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, d.Name()))
		if err != nil {
			return fmt.Errorf("list %s objects: %w", objType, err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return fmt.Errorf("list %s objects: %w", objType, err)
			}
			fn(Hash(d.Name()+e.Name()), info.Size())
		}
	}
	return nil
}

func isHexHash(s string) bool {
	return len(s) == HexLen && isHex(s)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
