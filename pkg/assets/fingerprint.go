package assets

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DockerIgnoreFile = ".dockerignore"

type (
	// Fingerprint identifies the content of a docker build context: two contexts with the same files (after
	// applying the context's .dockerignore) have the same hash.
	Fingerprint struct {
		Hash string
		// Files are the slash separated paths, relative to the context, that went into the hash.
		Files []string
	}

	ignorePattern struct {
		pattern string
		negate  bool
	}

	ignoreMatcher struct {
		patterns    []ignorePattern
		hasNegation bool
	}
)

// FingerprintContext hashes the build context directory. The context must contain the dockerfile (a path relative
// to the context).
func FingerprintContext(contextDir, dockerfile string) (*Fingerprint, error) {
	info, err := os.Stat(contextDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, errors.Errorf("build context %s does not exist", contextDir)
	case err != nil:
		return nil, errors.Wrapf(err, "could not read build context %s", contextDir)
	case !info.IsDir():
		return nil, errors.Errorf("build context %s is not a directory", contextDir)
	}

	dockerfile = filepath.ToSlash(filepath.Clean(dockerfile))
	if info, err := os.Stat(filepath.Join(contextDir, filepath.FromSlash(dockerfile))); err != nil || !info.Mode().IsRegular() {
		return nil, errors.Errorf("build context %s has no %s", contextDir, dockerfile)
	}

	matcher, err := readIgnoreFile(filepath.Join(contextDir, DockerIgnoreFile))
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	fp := &Fingerprint{}
	err = filepath.WalkDir(contextDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(contextDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if rel != dockerfile && matcher.ignored(rel) {
			if d.IsDir() && !matcher.hasNegation {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fp.Files = append(fp.Files, rel)
		io.WriteString(h, rel)
		h.Write([]byte{0})
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			io.WriteString(h, "link:"+target)
		case d.Type().IsRegular():
			if err := hashFile(h, p); err != nil {
				return err
			}
		}
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not fingerprint build context %s", contextDir)
	}
	fp.Hash = hex.EncodeToString(h.Sum(nil))
	zap.L().Named("assets").Debug("fingerprinted build context",
		zap.String("context", contextDir), zap.Int("files", len(fp.Files)), zap.String("hash", fp.Hash))
	return fp, nil
}

func hashFile(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func readIgnoreFile(p string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", p)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ip := ignorePattern{}
		if strings.HasPrefix(line, "!") {
			ip.negate = true
			m.hasNegation = true
			line = strings.TrimSpace(line[1:])
		}
		ip.pattern = strings.TrimPrefix(path.Clean(filepath.ToSlash(line)), "/")
		if !doublestar.ValidatePattern(ip.pattern) {
			return nil, errors.Errorf("invalid pattern '%s' in %s", line, p)
		}
		m.patterns = append(m.patterns, ip)
	}
	return m, errors.Wrapf(scanner.Err(), "could not read %s", p)
}

// ignored applies every pattern in order, the last matching one wins. A pattern matching a directory also
// matches everything in it.
func (m *ignoreMatcher) ignored(rel string) bool {
	ignored := false
	for _, ip := range m.patterns {
		if matches(ip.pattern, rel) {
			ignored = !ip.negate
		}
	}
	return ignored
}

func matches(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	// check each parent directory
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if ok, _ := doublestar.Match(pattern, dir); ok {
			return true
		}
	}
	return false
}
