package privacy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
)

const wipeChunk = 64 << 10

// Manager hands out single-use temp files and shreds them when released.
type Manager struct {
	dir string
	log *logrus.Entry

	// overwrite performs one wipe pass; swapped out in tests.
	overwrite func(path string, size int64, fill func([]byte) error) error

	created   atomic.Int64
	destroyed atomic.Int64
}

// NewManager creates resources under dir, or the OS temp dir when dir is empty.
func NewManager(dir string, log *logrus.Entry) *Manager {
	return &Manager{dir: dir, log: log, overwrite: overwriteFile}
}

// Resource is one ephemeral backing file. Destroy is safe to call any number of times.
type Resource struct {
	Path      string
	Size      int64
	CreatedAt time.Time

	mgr  *Manager
	once sync.Once
}

// Create writes data to a new randomly named file. The caller owns the
// returned resource and must Destroy it.
func (m *Manager) Create(data []byte, suffix string) (*Resource, error) {
	f, err := os.CreateTemp(m.dir, "lecture-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	m.created.Add(1)
	res := &Resource{Path: f.Name(), Size: int64(len(data)), CreatedAt: time.Now(), mgr: m}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		res.Destroy()
		return nil, fmt.Errorf("persist audio: %w", err)
	}

	m.log.WithField("size", humanize.Bytes(uint64(res.Size))).Debug("ephemeral resource created")
	return res, nil
}

// Destroy shreds and removes the backing file exactly once.
func (r *Resource) Destroy() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.mgr.destroy(r.Path)
		r.mgr.destroyed.Add(1)
	})
}

// Stats reports how many resources were created and destroyed.
func (m *Manager) Stats() (created, destroyed int64) {
	return m.created.Load(), m.destroyed.Load()
}

// Live is the number of resources not yet destroyed.
func (m *Manager) Live() int64 {
	return m.created.Load() - m.destroyed.Load()
}

func (m *Manager) destroy(path string) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		log := m.log.WithField("file", path)
		log.WithError(err).Error("stat before secure delete failed")
		m.remove(path, log)
		return
	}
	log := m.log.WithField("file", info.Name())

	size := info.Size()
	passes := []func([]byte) error{
		fillByte(0x00),
		fillByte(0xFF),
		fillRandom,
	}
	for i, fill := range passes {
		if err := m.overwrite(path, size, fill); err != nil {
			log.WithError(&apperr.CleanupError{Path: info.Name(), Pass: i + 1, Err: err}).
				Error("secure delete failed, falling back to plain removal")
			m.remove(path, log)
			return
		}
	}

	if m.remove(path, log) {
		log.WithField("size", humanize.Bytes(uint64(size))).Info("securely deleted file")
	}
}

func (m *Manager) remove(path string, log *logrus.Entry) bool {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Error("remove ephemeral file failed")
		return false
	}
	return true
}

func fillByte(b byte) func([]byte) error {
	return func(buf []byte) error {
		for i := range buf {
			buf[i] = b
		}
		return nil
	}
}

func fillRandom(buf []byte) error {
	_, err := io.ReadFull(rand.Reader, buf)
	return err
}

// overwriteFile rewrites the first size bytes of path in place and syncs.
func overwriteFile(path string, size int64, fill func([]byte) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	buf := make([]byte, min(size, wipeChunk))
	for written := int64(0); written < size; {
		n := min(size-written, int64(len(buf)))
		if err := fill(buf[:n]); err != nil {
			f.Close()
			return err
		}
		if _, err := f.WriteAt(buf[:n], written); err != nil {
			f.Close()
			return err
		}
		written += n
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
