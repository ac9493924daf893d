package ir

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"github.com/vmihailenco/msgpack/v5"
)

// ArtifactSchema is bumped whenever the Artifact payload changes shape.
const ArtifactSchema uint16 = 1

// MaxArtifactSize caps the decompressed payload ReadArtifact accepts.
const MaxArtifactSize int64 = 64 << 20

var (
	// ErrSchemaMismatch is returned when an artifact was written by another schema.
	ErrSchemaMismatch = errors.New("ir: artifact schema mismatch")
	// ErrArtifactTooLarge is returned when the decompressed payload exceeds the cap.
	ErrArtifactTooLarge = errors.New("ir: artifact too large")
)

// Artifact is the on-disk form of a compiled function.
type Artifact struct {
	Schema uint16 `msgpack:"schema"`
	SSA    bool   `msgpack:"ssa"` // versions stamped and PHIs inserted
	Func   *Func  `msgpack:"func"`
}

// WriteArtifact encodes f as msgpack inside an xz stream.
func WriteArtifact(w io.Writer, f *Func, ssa bool) error {
	if f == nil {
		return errors.New("ir: nil function")
	}
	zw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("ir: xz writer: %w", err)
	}
	enc := msgpack.NewEncoder(zw)
	if err := enc.Encode(&Artifact{Schema: ArtifactSchema, SSA: ssa, Func: f}); err != nil {
		_ = zw.Close()
		return fmt.Errorf("ir: encode %s: %w", f.Name, err)
	}
	return zw.Close()
}

// ReadArtifact decodes an artifact of at most MaxArtifactSize decompressed
// bytes, rebuilds the label index and validates the function.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	return ReadArtifactLimit(r, MaxArtifactSize)
}

// ReadArtifactLimit is ReadArtifact with a caller-chosen payload cap.
func ReadArtifactLimit(r io.Reader, maxSize int64) (*Artifact, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ir: xz reader: %w", err)
	}
	lr := &io.LimitedReader{R: zr, N: maxSize}
	var art Artifact
	if err := msgpack.NewDecoder(lr).Decode(&art); err != nil {
		if lr.N <= 0 {
			return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrArtifactTooLarge, maxSize)
		}
		return nil, fmt.Errorf("ir: decode: %w", err)
	}
	if art.Schema != ArtifactSchema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, art.Schema, ArtifactSchema)
	}
	if art.Func == nil {
		return nil, errors.New("ir: artifact has no function")
	}
	art.Func.Reindex()
	if err := Validate(art.Func); err != nil {
		return nil, err
	}
	return &art, nil
}

// SaveArtifact writes an artifact file atomically.
func SaveArtifact(path string, f *Func, ssa bool) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".oir-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = WriteArtifact(tmp, f, ssa); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadArtifact reads an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	art, err := ReadArtifact(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return art, nil
}
