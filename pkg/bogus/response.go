package bogus

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Response is the value a dispatcher sends for one request
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
}

// String renders the response exactly as Send puts it on the wire. The
// reason phrase is always "OK" and extra headers follow Content-Length
// sorted by name.
func (r Response) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d OK\r\nContent-Length: %d\r\n", r.Status, len(r.Body))
	for _, name := range r.headerNames() {
		fmt.Fprintf(&b, "%s: %s\r\n", name, r.Headers[name])
	}
	b.WriteString("\r\n")
	b.WriteString(r.Body)
	return b.String()
}

// Send writes the response bytes from String directly to the connection and
// closes it, one response per connection. Writers that cannot be hijacked,
// such as httptest.ResponseRecorder, fall back to Write.
func (r Response) Send(w http.ResponseWriter) error {
	hj, ok := w.(http.Hijacker)
	if !ok {
		return r.Write(w)
	}

	conn, buf, err := hj.Hijack()
	if err != nil {
		if errors.Is(err, http.ErrNotSupported) {
			return r.Write(w)
		}
		return err
	}
	defer conn.Close()

	if _, err := buf.WriteString(r.String()); err != nil {
		return err
	}
	return buf.Flush()
}

// Write sends the response through w. Only Content-Length and the
// registered headers are emitted; Date and Content-Type are suppressed
// unless registered. net/http picks the reason phrase here.
func (r Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for _, name := range r.headerNames() {
		h[name] = []string{r.Headers[name]}
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	if _, ok := h["Date"]; !ok {
		h["Date"] = nil
	}
	if _, ok := h["Content-Type"]; !ok {
		h["Content-Type"] = nil
	}

	w.WriteHeader(r.Status)
	if r.Body == "" {
		return nil
	}
	_, err := io.WriteString(w, r.Body)
	return err
}

// headerNames returns the registered header names sorted. A registered
// Content-Length in any spelling is dropped; the body length always wins.
func (r Response) headerNames() []string {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		if strings.EqualFold(name, "Content-Length") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
