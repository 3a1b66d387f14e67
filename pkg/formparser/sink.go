package formparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sink is the write/flush/close contract spec.md treats as external: a
// collaborator a File writes through, such as an in-memory buffer or an
// on-disk file. The transfer-encoding decoders are not Sinks; they sit in
// front of the File as partWriters (see coordinator.go).
type Sink interface {
	Write(buf []byte) (int, error)
	Flush() error
	Close() error
}

// spillTracker is implemented by sinks that can report whether they've
// spilled to disk; File.Write type-asserts for it after every write.
type spillTracker interface {
	InMemory() bool
	Path() string
}

// memorySpillSink buffers in memory up to maxMemory bytes, then creates an
// on-disk file and copies the buffered bytes plus all subsequent writes into
// it. This is the package's one shipped Sink implementation — spec.md
// explicitly treats spooled storage as an external collaborator, but a form
// parser library is unusable without a default.
type memorySpillSink struct {
	cfg *Config

	buf      bytes.Buffer
	file     *os.File
	path     string
	fileName []byte // declared filename, for keep-filename/keep-extensions

	maxMemory int64
	written   int64
}

func newMemorySpillSink(cfg *Config, declaredFileName []byte) *memorySpillSink {
	return &memorySpillSink{cfg: cfg, maxMemory: cfg.maxMemoryFileSize, fileName: declaredFileName}
}

func (s *memorySpillSink) Write(buf []byte) (int, error) {
	if s.file != nil {
		n, err := s.file.Write(buf)
		s.written += int64(n)
		if err != nil {
			return n, newFileError("write spilled file", err)
		}
		return n, nil
	}

	if s.maxMemory > 0 && s.written+int64(len(buf)) > s.maxMemory {
		if err := s.spill(); err != nil {
			return 0, err
		}
		return s.Write(buf)
	}

	n, _ := s.buf.Write(buf)
	s.written += int64(n)
	return n, nil
}

// spill creates the on-disk file and copies the in-memory buffer into it.
// Grounded on the pack's uuid.New().String() temp-naming convention
// (other_examples valvx-api-upload-handler.go: uploadID := uuid.New().String()).
func (s *memorySpillSink) spill() error {
	dir := s.cfg.uploadDir
	if dir == "" {
		dir = os.TempDir()
	}

	name := s.spillName()
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return newFileError("create spill file", err)
	}

	if _, err := f.Write(s.buf.Bytes()); err != nil {
		f.Close()
		return newFileError("copy buffered data to spill file", err)
	}

	s.file = f
	s.path = path
	s.buf.Reset()
	return nil
}

func (s *memorySpillSink) spillName() string {
	if s.cfg.uploadKeepFilename && len(s.fileName) > 0 {
		return basenameOf(string(s.fileName))
	}

	name := uuid.New().String()
	if s.cfg.uploadKeepExtensions && len(s.fileName) > 0 {
		if ext := filepath.Ext(basenameOf(string(s.fileName))); ext != "" {
			name += ext
		}
	}
	return name
}

// basenameOf strips directory components split on '\' or '/', per the
// filesystem-layout rule for UPLOAD_KEEP_FILENAME.
func basenameOf(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return filepath.Base(name)
}

func (s *memorySpillSink) Flush() error {
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

func (s *memorySpillSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	if s.cfg.uploadDeleteTmp {
		os.Remove(s.path)
	}
	return err
}

func (s *memorySpillSink) InMemory() bool { return s.file == nil }
func (s *memorySpillSink) Path() string   { return s.path }

// Bytes returns the in-memory contents. Only meaningful while InMemory();
// callers that need the data after a spill should read from Path() instead.
func (s *memorySpillSink) Bytes() []byte { return s.buf.Bytes() }
