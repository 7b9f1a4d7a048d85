package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level   int // gzip level; 0 means gzip.DefaultCompression
	MinSize int // bodies shorter than this are sent as-is
	Logger  *slog.Logger
}

var compressibleTypes = map[string]bool{
	"application/json":         true,
	"application/problem+json": true,
	"text/plain":               true,
}

// Compression gzips JSON and text responses for clients that accept it.
// Offer PDFs and bodyless responses are written unchanged.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.Level == 0 {
		cfg.Level = gzip.DefaultCompression
	}
	if _, err := gzip.NewWriterLevel(io.Discard, cfg.Level); err != nil {
		cfg.Level = gzip.DefaultCompression
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	level := cfg.Level
	pool := &sync.Pool{New: func() any {
		zw, _ := gzip.NewWriterLevel(io.Discard, level)
		return zw
	}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Encoding")
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			gw := &gzipResponseWriter{ResponseWriter: w, pool: pool, minSize: cfg.MinSize}
			next.ServeHTTP(gw, r)
			if err := gw.finish(); err != nil {
				cfg.Logger.ErrorContext(r.Context(), "finishing compressed response failed", "error", err)
			}
		})
	}
}

// acceptsGzip reports whether Accept-Encoding lists gzip with a non-zero q-value.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "gzip") {
			continue
		}
		q := 1.0
		for _, p := range strings.Split(params, ";") {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if ok && strings.EqualFold(k, "q") {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					q = f
				}
			}
		}
		return q > 0
	}
	return false
}

func isCompressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return compressibleTypes[mediaType]
}

func bodyless(status int) bool {
	return status < http.StatusOK || status == http.StatusNoContent || status == http.StatusNotModified
}

// gzipResponseWriter buffers the start of the body until it knows whether
// compression applies, then commits headers once.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool      *sync.Pool
	minSize   int
	status    int
	buf       []byte
	committed bool
	zw        *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.committed || w.status != 0 {
		return
	}
	w.status = status
	if bodyless(status) {
		w.commit()
	}
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.committed {
		if w.zw != nil {
			return w.zw.Write(b)
		}
		return w.ResponseWriter.Write(b)
	}
	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.minSize {
		if err := w.commit(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func (w *gzipResponseWriter) Flush() {
	if !w.committed && w.status != 0 {
		_ = w.commit()
	}
	if w.zw != nil {
		_ = w.zw.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *gzipResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// commit sends headers and any buffered body, choosing gzip when the
// response is large enough and of a compressible type.
func (w *gzipResponseWriter) commit() error {
	w.committed = true
	h := w.Header()
	if h.Get("Content-Type") == "" && len(w.buf) > 0 {
		h.Set("Content-Type", http.DetectContentType(w.buf))
	}

	compress := !bodyless(w.status) &&
		len(w.buf) > 0 && len(w.buf) >= w.minSize &&
		h.Get("Content-Encoding") == "" &&
		isCompressible(h.Get("Content-Type"))
	if compress {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		w.zw = w.pool.Get().(*gzip.Writer)
		w.zw.Reset(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(w.status)

	if len(w.buf) == 0 {
		return nil
	}
	buf := w.buf
	w.buf = nil
	if w.zw != nil {
		_, err := w.zw.Write(buf)
		return err
	}
	_, err := w.ResponseWriter.Write(buf)
	return err
}

func (w *gzipResponseWriter) finish() error {
	var err error
	if !w.committed && w.status != 0 {
		err = w.commit()
	}
	if w.zw != nil {
		if cerr := w.zw.Close(); err == nil {
			err = cerr
		}
		w.zw.Reset(io.Discard)
		w.pool.Put(w.zw)
		w.zw = nil
	}
	return err
}
