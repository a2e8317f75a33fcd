package object

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard-backend/internal/shared/util"
)

// ErrNotFound is returned by Open when the key holds no object.
var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key      string
	Size     int64
	MimeType string
	SHA256   string
}

// Store saves and retrieves resume files.
type Store interface {
	Put(ctx context.Context, owner string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by stores that can hand out time-limited URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

// OwnsKey reports whether key was built by BuildKey for owner.
func OwnsKey(owner, key string) bool {
	clean := path.Clean(key)
	if clean != key || strings.Contains(key, "..") {
		return false
	}
	dir, name := path.Split(clean)
	return dir == util.HashOwnerKey(owner)+"/" && name != ""
}

// BuildKey returns owner-hashed/<uuid>_<sanitized name>.
func BuildKey(owner, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashOwnerKey(owner), uuid.NewString()+"_"+name), nil
}

// Sniff reads up to 512 bytes to detect the content type and returns a reader replaying them.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var buf [512]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head := append([]byte(nil), buf[:n]...)
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// Meter counts and hashes bytes as they are read.
type Meter struct {
	r io.Reader
	h hash.Hash
	n int64
}

func NewMeter(r io.Reader) *Meter {
	return &Meter{r: r, h: sha256.New()}
}

func (m *Meter) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if n > 0 {
		m.h.Write(p[:n])
		m.n += int64(n)
	}
	return n, err
}

func (m *Meter) Size() int64 { return m.n }

func (m *Meter) Sum() string { return hex.EncodeToString(m.h.Sum(nil)) }
