package minecraft

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Checksum algorithms.
const (
	AlgoSHA1   = "sha1"
	AlgoSHA256 = "sha256"
)

// Checksum is an algorithm-tagged digest. An empty Value means the file is
// only checked for existence.
type Checksum struct {
	Algorithm string
	Value     string
}

// SHA1 tags a sha1 hex digest.
func SHA1(v string) Checksum { return Checksum{Algorithm: AlgoSHA1, Value: strings.ToLower(v)} }

// SHA256 tags a sha256 hex digest.
func SHA256(v string) Checksum { return Checksum{Algorithm: AlgoSHA256, Value: strings.ToLower(v)} }

// IsZero reports whether no digest is known.
func (c Checksum) IsZero() bool { return c.Value == "" }

func (c Checksum) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Algorithm + ":" + c.Value
}

// NewHash returns a hasher for the checksum's algorithm.
func (c Checksum) NewHash() (hash.Hash, error) {
	switch c.Algorithm {
	case AlgoSHA1, "":
		return sha1.New(), nil
	case AlgoSHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm %q", c.Algorithm)
	}
}

// FileChecksum hashes the file at path with algo.
func FileChecksum(path, algo string) (string, error) {
	h, err := Checksum{Algorithm: algo}.NewHash()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileState is the outcome of checking one file.
type FileState int

const (
	FileOK FileState = iota
	FileMissing
	FileCorrupted
)

func (s FileState) String() string {
	switch s {
	case FileOK:
		return "ok"
	case FileMissing:
		return "missing"
	case FileCorrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// CheckFile verifies existence, then size when size > 0, then checksum.
func CheckFile(path string, sum Checksum, size int64) (FileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileMissing, nil
		}
		return FileMissing, err
	}
	if info.IsDir() {
		return FileCorrupted, nil
	}
	if size > 0 && info.Size() != size {
		return FileCorrupted, nil
	}
	if sum.IsZero() {
		return FileOK, nil
	}
	actual, err := FileChecksum(path, sum.Algorithm)
	if err != nil {
		return FileCorrupted, err
	}
	if !strings.EqualFold(actual, sum.Value) {
		return FileCorrupted, nil
	}
	return FileOK, nil
}
