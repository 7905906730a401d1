// Package accesslog appends one common-log-format line per request to an
// append-only file, one file per day.
package accesslog

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/kit/log"
)

// Open creates the log directory if needed and opens today's access log for
// appending.
func Open(dir string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("access-%s.log", time.Now().Format("2006-01-02"))

	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Middleware writes a log line for every request after the wrapped handler
// has produced its response. Each line goes to w and is echoed to logger.
func Middleware(w io.Writer, logger log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: rw, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		host := r.RemoteAddr
		if host == "" {
			host = "-"
		}

		line := fmt.Sprintf("%s - - [%s] \"%s %s %s\" %d %d",
			host,
			time.Now().Format("02/Jan/2006:15:04:05 -0700"),
			r.Method,
			r.URL.RequestURI(),
			r.Proto,
			wrapped.statusCode,
			wrapped.written,
		)

		fmt.Fprintln(w, line)
		logger.Log("line", line)
	})
}

// responseWriter captures the status code and body size for the log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.written += n
	return n, err
}
