package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"complyhr/internal/platform/config"
)

var (
	ErrInvalidPath      = errors.New("invalid object path")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpired          = errors.New("signed url expired")
)

// Bucket stores uploaded documents under {companyId}/{category}/{uuid}.{ext}
// and hands out time-boxed signed URLs for them.
type Bucket struct {
	fs     afero.Fs
	secret []byte
	apiURL string
	ttl    time.Duration
}

func NewBucket(cfg config.StorageConfig, apiURL string) *Bucket {
	return NewBucketWithFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.BasePath), cfg, apiURL)
}

func NewBucketWithFs(fs afero.Fs, cfg config.StorageConfig, apiURL string) *Bucket {
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Bucket{
		fs:     fs,
		secret: []byte(cfg.SigningSecret),
		apiURL: strings.TrimRight(apiURL, "/"),
		ttl:    ttl,
	}
}

type Object struct {
	Path string
	Size int64
}

func (b *Bucket) Put(companyID, category, ext string, r io.Reader) (*Object, error) {
	p := path.Join(companyID, category, uuid.NewString()+"."+ext)
	if err := cleanPath(p); err != nil {
		return nil, err
	}

	if err := b.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, err
	}
	if err := afero.WriteReader(b.fs, p, r); err != nil {
		return nil, err
	}

	info, err := b.fs.Stat(p)
	if err != nil {
		return nil, err
	}
	return &Object{Path: p, Size: info.Size()}, nil
}

func (b *Bucket) Open(p string) (afero.File, error) {
	if err := cleanPath(p); err != nil {
		return nil, err
	}
	return b.fs.Open(p)
}

func (b *Bucket) Delete(p string) error {
	if err := cleanPath(p); err != nil {
		return err
	}
	return b.fs.Remove(p)
}

// SignedURL returns {api_url}/files/{path}?expires=..&signature=.. valid for the bucket TTL.
func (b *Bucket) SignedURL(p string, now time.Time) string {
	expires := strconv.FormatInt(now.Add(b.ttl).Unix(), 10)
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", b.sign(p, expires))
	return fmt.Sprintf("%s/files/%s?%s", b.apiURL, p, q.Encode())
}

// Verify checks a signature produced by SignedURL.
func (b *Bucket) Verify(p, expires, signature string, now time.Time) error {
	if err := cleanPath(p); err != nil {
		return err
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	expected := b.sign(p, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	if now.Unix() > exp {
		return ErrExpired
	}
	return nil
}

func (b *Bucket) sign(p, expires string) string {
	h := hmac.New(sha256.New, b.secret)
	h.Write([]byte(p + "\n" + expires))
	return hex.EncodeToString(h.Sum(nil))
}

func cleanPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || path.Clean(p) != p || strings.Contains(p, "..") {
		return ErrInvalidPath
	}
	return nil
}
