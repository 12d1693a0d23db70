package gate

import "net/http"

// responseWriter tracks whether the response has started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Flush() {
	w.wroteHeader = true
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HeadersSent reports whether the status line has been written.
func (w *responseWriter) HeadersSent() bool { return w.wroteHeader }

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

type headersSent interface {
	HeadersSent() bool
}

func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	rw := &responseWriter{ResponseWriter: w}
	if hs, ok := w.(headersSent); ok {
		rw.wroteHeader = hs.HeadersSent()
	}
	return rw
}
