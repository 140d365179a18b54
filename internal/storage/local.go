package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cwrk-planet/underbyte/pkg/errs"

	"github.com/google/uuid"
)

var ErrTooLarge = errs.New(errs.ErrTooLarge, "file too large")

// Local writes uploads into a directory served under PublicPrefix.
type Local struct {
	Dir          string
	PublicPrefix string // e.g. "/uploads"
	MaxBytes     int64
}

type Stored struct {
	URL  string
	Name string
}

// Save copies r into a new file named <uuid><ext of original>.
func (l *Local) Save(original string, r io.Reader) (Stored, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return Stored{}, fmt.Errorf("prepare upload dir: %w", err)
	}

	name := uuid.NewString() + safeExt(original)
	dst := filepath.Join(l.Dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return Stored{}, err
	}

	src := r
	if l.MaxBytes > 0 {
		src = io.LimitReader(r, l.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && l.MaxBytes > 0 && n > l.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return Stored{}, err
	}

	return Stored{URL: path.Join("/", l.PublicPrefix, name), Name: name}, nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		return ""
	}
	return ext
}
