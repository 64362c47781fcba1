package backendstub

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// Call is one request as the stub received it.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// Recorder keeps every request for assertions.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(raw))
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &call.Body)
			}
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (rec *Recorder) Calls() []Call {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Call(nil), rec.calls...)
}

// CallsTo filters recorded calls by method and exact path.
func (rec *Recorder) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range rec.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (rec *Recorder) Reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.calls = nil
}

type fault struct {
	status int
	body   any
}

// Faults forces chosen method+path pairs to fail until cleared.
type Faults struct {
	mu     sync.RWMutex
	faults map[string]fault
}

// Fail makes method+path answer status with {"detail": detail}.
func (f *Faults) Fail(method, path string, status int, detail string) {
	f.FailWith(method, path, status, map[string]any{"detail": detail})
}

// FailWith makes method+path answer status with an arbitrary JSON body.
func (f *Faults) FailWith(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.faults == nil {
		f.faults = make(map[string]fault)
	}
	f.faults[method+" "+path] = fault{status: status, body: body}
}

func (f *Faults) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = nil
}

func (f *Faults) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.RLock()
		ft, ok := f.faults[r.Method+" "+r.URL.Path]
		f.mu.RUnlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ft.status)
		_ = json.NewEncoder(w).Encode(ft.body)
	})
}
