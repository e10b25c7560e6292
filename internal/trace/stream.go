package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes every accepted event as it arrives. File outputs are
// buffered and written out by Flush; stderr is written through.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer // nil для stderr/stdout
	level  Level
	format Format
	count  int
	closed bool
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{out: w, level: level, format: format}
	if w != os.Stderr && w != os.Stdout {
		t.buf = bufio.NewWriter(w)
	}
	if format == FormatChrome {
		t.write([]byte("{\"traceEvents\":[\n"))
	}
	return t
}

func (t *StreamTracer) write(p []byte) {
	// трассировка не должна ронять проверку: ошибки записи игнорируются
	if t.buf != nil {
		_, _ = t.buf.Write(p)
		return
	}
	_, _ = t.out.Write(p)
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.accepts(ev) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	ev.Seq = nextSeq()
	if t.format == FormatChrome && t.count > 0 {
		t.write([]byte(",\n"))
	}
	t.write(FormatEvent(ev, t.format))
	t.count++
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf != nil {
		return t.buf.Flush()
	}
	return nil
}

// Close terminates a Chrome array, flushes and closes file outputs.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	t.closed = true
	var err error
	if t.buf != nil {
		err = t.buf.Flush()
	}
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if c, ok := t.out.(io.Closer); ok && t.buf != nil {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
