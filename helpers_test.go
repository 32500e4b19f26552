package nadcon

import (
	"encoding/binary"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"

	"github.com/arkokoley/modis-county-cropper-sub001/internal/gridtest"
)

const testDir = "/data"

// trackingFs wraps an afero.Fs and counts open handles and node reads.
type trackingFs struct {
	afero.Fs
	mu    sync.Mutex
	open  map[string]int
	reads int
}

func newTrackingFs() *trackingFs {
	return &trackingFs{Fs: afero.NewMemMapFs(), open: make(map[string]int)}
}

func (t *trackingFs) Open(name string) (afero.File, error) {
	f, err := t.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.open[name]++
	t.mu.Unlock()
	return &trackedFile{File: f, fs: t, name: name}, nil
}

// openHandles returns the number of handles not yet closed.
func (t *trackingFs) openHandles() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.open {
		n += c
	}
	return n
}

func (t *trackingFs) readCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

type trackedFile struct {
	afero.File
	fs     *trackingFs
	name   string
	closed bool
}

func (f *trackedFile) Close() error {
	if !f.closed {
		f.closed = true
		f.fs.mu.Lock()
		f.fs.open[f.name]--
		f.fs.mu.Unlock()
	}
	return f.File.Close()
}

func (f *trackedFile) ReadAt(p []byte, off int64) (int, error) {
	f.fs.mu.Lock()
	f.fs.reads++
	f.fs.mu.Unlock()
	return f.File.ReadAt(p, off)
}

var _ io.ReaderAt = (*trackedFile)(nil)

// conusGrid spans -130..-60 by 20..50 at one degree, 71x31 nodes.
func conusGrid() gridtest.Grid {
	return gridtest.Span(-130, -60, 20, 50, 1, 1)
}

// writeGrid stores a grid pair for key under dir.
func writeGrid(t testing.TB, fsys afero.Fs, dir, key string, g gridtest.Grid, lat, lon gridtest.ValueFunc) string {
	t.Helper()
	base := filepath.Join(dir, key)
	if err := gridtest.Write(fsys, base, g, lat, lon, binary.NativeEndian); err != nil {
		t.Fatalf("writing %s grid: %v", key, err)
	}
	return base
}

// quietLogger returns a logger that records entries without printing them.
func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// initTest opens a Context over fsys rooted at testDir.
func initTest(t testing.TB, fsys afero.Fs, opts ...Option) *Context {
	t.Helper()
	log, _ := quietLogger()
	all := append([]Option{WithFs(fsys), WithDataDir(testDir), WithLogger(log)}, opts...)
	ctx, err := Init(all...)
	if err != nil {
		t.Fatalf("Init() error = %v, want nil", err)
	}
	t.Cleanup(func() { ctx.Shutdown() })
	return ctx
}
