package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	codecLZ4  = "lz4"
	codecZstd = "zstd"

	extLZ4  = ".prj.lz4"
	extZstd = ".prj.zst"
)

var errUnknownCodec = errors.New("unknown backup codec")

func backupExt(codec string) (string, error) {
	switch codec {
	case codecLZ4:
		return extLZ4, nil
	case codecZstd:
		return extZstd, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownCodec, codec)
	}
}

// backupName is <stem>.<uuid-v7><ext>, so backups of one file sort by time.
func backupName(path, codec string) (string, error) {
	ext, err := backupExt(codec)
	if err != nil {
		return "", err
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return stem + "." + uuid.Must(uuid.NewV7()).String() + ext, nil
}

// writeBackup compresses data into a new backup of path inside dir and
// returns the backup's path.
func writeBackup(dir, path string, data []byte, codec string) (string, error) {
	name, err := backupName(path, codec)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	out := filepath.Join(dir, name)
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := compress(f, data, codec); err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("compress %s: %w", out, err)
	}

	return out, f.Close()
}

func compress(w io.Writer, data []byte, codec string) error {
	var zw io.WriteCloser
	switch codec {
	case codecLZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
			return err
		}
		zw = lw
	case codecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return err
		}
		zw = enc
	default:
		return fmt.Errorf("%w: %q", errUnknownCodec, codec)
	}

	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return err
	}

	return zw.Close()
}

// readBackup decompresses a backup. The codec is taken from the extension.
func readBackup(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch {
	case strings.HasSuffix(path, ".lz4"):
		return io.ReadAll(lz4.NewReader(f))
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()

		return io.ReadAll(dec)
	default:
		return nil, fmt.Errorf("%w: extension of %s", errUnknownCodec, path)
	}
}
