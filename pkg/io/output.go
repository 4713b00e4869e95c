package io

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// OutputTo writes each file under dest, one after the other, replacing any existing file at the same path.
func OutputTo(files []File, dest string) error {
	log := zap.L().Named("io")
	for _, f := range files {
		path := filepath.Join(dest, filepath.FromSlash(f.Path()))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "could not create directory for %s", f.Path())
		}
		mode := fileMode(f)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return errors.Wrapf(err, "could not open %s", path)
		}
		counter := &DigestWriter{Delegate: file}
		_, err = f.WriteTo(counter)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return errors.Wrapf(err, "could not write %s", path)
		}
		// an existing file keeps its old mode through O_TRUNC
		if err := os.Chmod(path, mode); err != nil {
			return errors.Wrapf(err, "could not set mode of %s", path)
		}
		log.Debug("wrote file",
			zap.String("path", path), zap.Int("bytes", counter.BytesWritten), zap.String("sha256", counter.Digest()[:12]))
	}
	return nil
}
