package log

import (
	"bytes"
	"io"
	"sync"

	"go.uber.org/zap"
)

// HTTPWriter adapts the access log lines produced by gorilla/handlers into
// info-level entries on the "http" logger.
type HTTPWriter struct {
	mu     sync.Mutex
	logger *zap.SugaredLogger
	buf    bytes.Buffer
}

var _ io.Writer = (*HTTPWriter)(nil)

// NewHTTPWriter returns a writer that logs through l, or through the
// package logger when l is nil.
func NewHTTPWriter(l *zap.SugaredLogger) *HTTPWriter {
	if l == nil {
		l = Named("http")
	}
	return &HTTPWriter{logger: l}
}

// Write buffers p and emits one entry per complete line.
func (w *HTTPWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// partial line, keep it for the next write
			w.buf.Reset()
			w.buf.Write(line)
			break
		}
		if trimmed := bytes.TrimRight(line, "\r\n"); len(trimmed) > 0 {
			w.logger.Info(string(trimmed))
		}
	}
	return len(p), nil
}
