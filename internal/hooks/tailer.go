package hooks

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// LogPattern selects the event log files inside a hooks directory.
const LogPattern = "*.jsonl"

// Batch is the outcome of one Tailer poll. When Reset is true the batch
// holds the complete contents of every log and callers must discard state
// derived from earlier batches before applying it.
type Batch struct {
	Result
	Reset bool
	Files int
}

// headSize is how many leading bytes of a log are kept to recognise a file
// rewritten in place.
const headSize = 256

type tailPos struct {
	offset int64       // end of the last complete line consumed
	lines  int         // complete lines consumed
	tail   []byte      // unterminated last line already decoded by a replay
	head   []byte      // leading bytes seen so far
	info   os.FileInfo // identity of the file that was read
}

// Tailer incrementally decodes the *.jsonl logs in a directory, returning
// only complete lines appended since the previous poll.
type Tailer struct {
	dir   string
	files map[string]*tailPos
}

// NewTailer returns a tailer for dir. Nothing is read until Poll.
func NewTailer(dir string) *Tailer {
	return &Tailer{dir: dir, files: make(map[string]*tailPos)}
}

// Dir returns the watched directory.
func (t *Tailer) Dir() string {
	return t.dir
}

// Poll decodes newly appended lines. A trailing line without a newline is
// held until it is completed. A log that shrank, disappeared, was replaced or
// was rewritten in place triggers a full re-read reported with Reset set.
func (t *Tailer) Poll() (Batch, error) {
	paths, err := t.list()
	if err != nil {
		return Batch{}, err
	}

	if t.needsReset(paths) {
		return t.replay(paths)
	}

	var b Batch
	b.Files = len(paths)
	for _, p := range paths {
		if err := t.readNew(p, &b.Result, false); err != nil {
			return Batch{}, err
		}
	}
	return b, nil
}

// Replay forgets all offsets and decodes every log from the start,
// including an unterminated last line.
func (t *Tailer) Replay() (Batch, error) {
	paths, err := t.list()
	if err != nil {
		return Batch{}, err
	}
	return t.replay(paths)
}

func (t *Tailer) replay(paths []string) (Batch, error) {
	t.files = make(map[string]*tailPos)
	b := Batch{Reset: true, Files: len(paths)}
	for _, p := range paths {
		if err := t.readNew(p, &b.Result, true); err != nil {
			return Batch{}, err
		}
	}
	return b, nil
}

func (t *Tailer) list() ([]string, error) {
	if _, err := os.Stat(t.dir); err != nil {
		return nil, fmt.Errorf("hooks dir: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(t.dir, LogPattern))
	if err != nil {
		return nil, fmt.Errorf("list hook logs: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (t *Tailer) needsReset(paths []string) bool {
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		present[p] = true
		pos, ok := t.files[p]
		if !ok {
			continue
		}
		if pos.changed(p) {
			return true
		}
	}
	for p := range t.files {
		if !present[p] {
			return true
		}
	}
	return false
}

// changed reports whether path no longer continues the content pos was
// built from: another file now has the name, it shrank, its leading bytes
// differ, or a line decoded without its newline was altered.
func (pos *tailPos) changed(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return true
	}
	if pos.info != nil && !os.SameFile(pos.info, info) {
		return true
	}
	if info.Size() < pos.offset+int64(len(pos.tail)) {
		return true
	}

	if len(pos.head) > 0 {
		buf := make([]byte, len(pos.head))
		if _, err := f.ReadAt(buf, 0); err != nil || !bytes.Equal(buf, pos.head) {
			return true
		}
	}

	if len(pos.tail) > 0 {
		buf := make([]byte, len(pos.tail)+1)
		n, err := f.ReadAt(buf, pos.offset)
		if err != nil && err != io.EOF {
			return true
		}
		if n < len(pos.tail) || !bytes.Equal(buf[:len(pos.tail)], pos.tail) {
			return true
		}
		// The line kept growing after it was decoded
		if n > len(pos.tail) && buf[len(pos.tail)] != '\n' {
			return true
		}
	}
	return false
}

// readNew appends the decoded complete lines after the stored offset of path.
// With final set an unterminated last line is decoded too and remembered so
// a later poll does not emit it again.
func (t *Tailer) readNew(path string, res *Result, final bool) error {
	pos, ok := t.files[path]
	if !ok {
		pos = &tailPos{}
		t.files[path] = pos
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open hook log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat hook log: %w", err)
	}
	pos.info = info

	if _, err := f.Seek(pos.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek hook log: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read hook log: %w", err)
	}

	// A line decoded by a replay has since received its newline
	if n := len(pos.tail); n > 0 && len(data) > n && data[n] == '\n' {
		data = data[n+1:]
		pos.offset += int64(n + 1)
		pos.lines++
		pos.tail = nil
	}

	if end := bytes.LastIndexByte(data, '\n'); end >= 0 {
		complete := data[:end+1]
		chunk := decodeFrom(string(complete), pos.lines)
		res.Events = append(res.Events, chunk.Events...)
		res.Errors = append(res.Errors, chunk.Errors...)

		pos.offset += int64(len(complete))
		pos.lines += bytes.Count(complete, []byte{'\n'})
		data = data[end+1:]
	}

	// Hold back a trailing partial line until its newline arrives, unless
	// this is a full read.
	if final && pos.tail == nil && len(bytes.TrimSpace(data)) > 0 {
		chunk := decodeFrom(string(data), pos.lines)
		res.Events = append(res.Events, chunk.Events...)
		res.Errors = append(res.Errors, chunk.Errors...)
		pos.tail = append([]byte(nil), data...)
	}

	return pos.readHead(f)
}

// readHead records up to headSize leading bytes of the consumed content.
func (pos *tailPos) readHead(f *os.File) error {
	n := pos.offset + int64(len(pos.tail))
	if n > headSize {
		n = headSize
	}
	if int(n) <= len(pos.head) {
		return nil
	}
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return fmt.Errorf("read hook log: %w", err)
	}
	pos.head = buf
	return nil
}
