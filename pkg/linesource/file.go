package linesource

import (
	"bytes"
	"io"
	"os"

	"github.com/go-errors/errors"
	"golang.org/x/exp/mmap"
)

const (
	indexChunk = 1 << 20
	readChunk  = 4 << 10
	// checkpointStride is the number of lines between recorded offsets.
	checkpointStride = 256
)

// File is a lazily read Source over a byte range.
//
// Opening it makes one sequential pass to count lines, which Len needs, and
// records the offset of every checkpointStride-th line. Index memory is
// therefore about 8 bytes per 256 lines. Line seeks to the nearest checkpoint
// and reads forward, and remembers where the last line ended so a forward
// scan reads each byte once. A File is not safe for concurrent use.
type File struct {
	r           io.ReaderAt
	size        int64
	lines       int
	checkpoints []int64
	closer      io.Closer

	next      int
	nextStart int64
}

var _ ReadCloser = (*File)(nil)

// Open returns a Source for the file at path, memory-mapping it.
// Pass "-" to read stdin, which is buffered in memory since it cannot be mapped.
func Open(path string) (*File, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Errorf("read stdin: %w", err)
		}
		return NewFile(bytes.NewReader(data), int64(len(data)), nil)
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Errorf("open log file: %w", err)
	}
	f, err := NewFile(m, int64(m.Len()), m)
	if err != nil {
		return nil, errors.Join(err, m.Close())
	}
	return f, nil
}

// NewFile indexes size bytes of r. closer, if non-nil, is closed by Close.
func NewFile(r io.ReaderAt, size int64, closer io.Closer) (*File, error) {
	f := &File{r: r, size: size, closer: closer}
	if err := f.index(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) index() error {
	if f.size == 0 {
		return nil
	}
	f.lines = 1
	f.checkpoints = append(f.checkpoints, 0)

	buf := make([]byte, indexChunk)
	for off := int64(0); off < f.size; {
		n, err := f.r.ReadAt(buf, off)
		if n == 0 && err != nil {
			return errors.Errorf("index log file at offset %d: %w", off, err)
		}
		chunk := buf[:n]
		for base := 0; ; {
			i := bytes.IndexByte(chunk[base:], '\n')
			if i < 0 {
				break
			}
			next := off + int64(base+i) + 1
			if next < f.size {
				if f.lines%checkpointStride == 0 {
					f.checkpoints = append(f.checkpoints, next)
				}
				f.lines++
			}
			base += i + 1
		}
		off += int64(n)
	}
	return nil
}

// Len returns the number of lines. A trailing newline does not start a new line.
func (f *File) Len() int { return f.lines }

// Line reads the line at index i, stripping "\n" or "\r\n".
func (f *File) Line(i int) (string, bool) {
	if i < 0 || i >= f.lines {
		return "", false
	}

	off := f.nextStart
	if i != f.next {
		off = f.checkpoints[i/checkpointStride]
		for k := i - i%checkpointStride; k < i; k++ {
			_, end, err := f.readLine(off)
			if err != nil {
				return "", false
			}
			off = end
		}
	}

	line, end, err := f.readLine(off)
	if err != nil {
		return "", false
	}
	f.next, f.nextStart = i+1, end
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return string(line), true
}

// readLine returns the bytes from off through the next newline, or to the end
// of the data, and the offset just past them.
func (f *File) readLine(off int64) ([]byte, int64, error) {
	var line []byte
	chunk := make([]byte, readChunk)
	for pos := off; pos < f.size; {
		n, err := f.r.ReadAt(chunk[:min(int64(len(chunk)), f.size-pos)], pos)
		if n == 0 && err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, errors.Errorf("read log file at offset %d: %w", pos, err)
		}
		if n == 0 {
			break
		}
		if i := bytes.IndexByte(chunk[:n], '\n'); i >= 0 {
			line = append(line, chunk[:i+1]...)
			return line, pos + int64(i) + 1, nil
		}
		line = append(line, chunk[:n]...)
		pos += int64(n)
	}
	return line, f.size, nil
}

// Close releases the underlying mapping, if any.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	if err := f.closer.Close(); err != nil {
		return errors.Errorf("close log file: %w", err)
	}
	return nil
}
