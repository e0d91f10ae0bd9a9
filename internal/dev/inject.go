package dev

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

// ScriptInjector returns middleware that injects ClientScript into HTML
// responses so browsers pick up the reload WebSocket without the page
// opting in. Non-HTML responses and protocol upgrades pass through
// untouched.
func ScriptInjector() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket upgrades (the reload endpoint itself, or any
			// app-mounted socket) must reach the hijackable writer.
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &injectRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			body := rec.buf.Bytes()
			if isHTML(rec.Header().Get("Content-Type"), body) {
				body = injectScript(body)
			}

			rec.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(rec.status)
			w.Write(body)
		})
	}
}

// injectScript places ClientScript before </body>, falling back to
// </html>, falling back to appending.
func injectScript(body []byte) []byte {
	script := []byte(ClientScript)
	for _, closer := range [][]byte{[]byte("</body>"), []byte("</html>")} {
		if idx := bytes.LastIndex(body, closer); idx != -1 {
			out := make([]byte, 0, len(body)+len(script))
			out = append(out, body[:idx]...)
			out = append(out, script...)
			out = append(out, body[idx:]...)
			return out
		}
	}
	return append(body, script...)
}

func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return strings.Contains(contentType, "text/html")
}

// injectRecorder buffers a response so the body can be rewritten before
// anything reaches the wire.
type injectRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *injectRecorder) WriteHeader(status int) {
	r.status = status
}

func (r *injectRecorder) Write(b []byte) (int, error) {
	return r.buf.Write(b)
}
