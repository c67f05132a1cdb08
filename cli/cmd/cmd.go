package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer commands print results to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the writer commands print per-line diagnostics to.
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// sources reads a list of script files in order, followed by stdin if it was
// named.
type sources struct {
	files []*os.File
	stdin io.Reader
	r     io.Reader
}

// openSources opens the given paths for sequential reading.
//
// Each file is read at most once, even when named through different paths
// or symlinks. All occurrences of "-" are replaced with a single stdin
// reader placed last, so it is read after every regular file.
func openSources(paths []string, stdin io.Reader) (*sources, error) {
	var (
		s        sources
		seen     = make(map[fileKey]struct{})
		useStdin bool
	)

	stdinKey, hasStdinKey := fileKey{}, false
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			stdinKey, hasStdinKey = makeFileKey(info)
		}
	}

	for _, path := range paths {
		if path == stdinSource {
			useStdin = true

			continue
		}

		file, key, err := openFile(path)
		if err != nil {
			s.Close()

			return nil, ErrOpenSource.With(slog.String("file", path)).Wrap(err)
		}

		if hasStdinKey && key == stdinKey {
			// Stdin redirected from this same file.
			useStdin = true

			file.Close()

			continue
		}

		if _, dup := seen[key]; dup {
			file.Close()

			continue
		}

		seen[key] = struct{}{}
		s.files = append(s.files, file)
	}

	readers := make([]io.Reader, 0, len(s.files)+1)
	for _, f := range s.files {
		readers = append(readers, &terminated{r: f})
	}

	if useStdin {
		s.stdin = stdin
		readers = append(readers, stdin)
	}

	s.r = io.MultiReader(readers...)

	return &s, nil
}

// Read implements io.Reader.
func (s *sources) Read(p []byte) (int, error) { return s.r.Read(p) }

// terminated appends a newline to a non-empty source that does not end with
// one, so the last line of a file never joins the first line of the next.
type terminated struct {
	r    io.Reader
	last byte
	done bool
}

// Read implements io.Reader.
func (t *terminated) Read(p []byte) (int, error) {
	if t.done {
		return 0, io.EOF
	}

	n, err := t.r.Read(p)
	if n > 0 {
		t.last = p[n-1]
	}

	if !errors.Is(err, io.EOF) {
		return n, err
	}

	t.done = true

	if t.last == 0 || t.last == '\n' {
		return n, io.EOF
	}

	if n < len(p) {
		p[n] = '\n'

		return n + 1, io.EOF
	}

	// No room left in p: deliver the newline on the next call.
	t.done = false
	t.last = '\n'
	t.r = strings.NewReader("\n")

	return n, nil
}

// Close closes every opened file. Stdin is left open.
func (s *sources) Close() error {
	var errs []error

	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	s.files = nil

	return errors.Join(errs...)
}

// openFile resolves path through symlinks and opens it, returning its
// identity for deduplication.
func openFile(path string) (*os.File, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fileKey{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fileKey{}, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, fileKey{}, err
	}

	key, ok := makeFileKey(info)
	if !ok {
		// Without device and inode, fall back to the resolved path.
		key = fileKey{ino: xxh3.HashString(resolved)}
	}

	return file, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
