package io

import (
	"io"
	"io/fs"
)

type (
	File interface {
		Path() string
		WriteTo(io.Writer) (int64, error)
	}

	// Executable is implemented by files written with the executable bit set.
	Executable interface {
		Executable() bool
	}

	// RawFile represents a file with its included `Content`.
	RawFile struct {
		FPath   string
		Content []byte
		Exec    bool
	}
)

func (r *RawFile) Clone() *RawFile {
	nf := &RawFile{
		FPath: r.FPath,
		Exec:  r.Exec,
	}
	nf.Content = make([]byte, len(r.Content))
	copy(nf.Content, r.Content)
	return nf
}

func (r *RawFile) Path() string {
	return r.FPath
}

func (r *RawFile) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(r.Content)
	return int64(n), err
}

func (r *RawFile) Executable() bool {
	return r.Exec
}

func fileMode(f File) fs.FileMode {
	if e, ok := f.(Executable); ok && e.Executable() {
		return 0o755
	}
	return 0o644
}
