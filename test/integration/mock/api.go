package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is a call recorded by the gateway mock.
type Request struct {
	Headers map[string]string
	Body    map[string]any
}

// ApiMock stands in for third-party HTTP gateways such as the SMS webhook.
// Responses are configured per route; unconfigured routes answer 200 with an id.
type ApiMock struct {
	mu        sync.Mutex
	server    *httptest.Server
	requests  map[string][]Request
	statuses  map[string]int
	responses map[string]map[string]any
}

func NewApiServer() *ApiMock {
	return &ApiMock{
		requests:  map[string][]Request{},
		statuses:  map[string]int{},
		responses: map[string]map[string]any{},
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	if a.server == nil {
		return ""
	}
	return a.server.URL
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)

	headers := map[string]string{}
	for name, values := range r.Header {
		headers[name] = values[0]
	}

	a.mu.Lock()
	a.requests[key] = append(a.requests[key], Request{Headers: headers, Body: body})
	count := len(a.requests[key])
	status, ok := a.statuses[key]
	if !ok {
		status = http.StatusOK
	}
	response, ok := a.responses[key]
	if !ok {
		response = map[string]any{"id": fmt.Sprintf("mock-%d", count)}
	}
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// SetResponse configures the status and body returned for a route.
func (a *ApiMock) SetResponse(method, path string, status int, response map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.statuses[method+path] = status
	if response != nil {
		a.responses[method+path] = response
	}
}

// Requests returns the calls received on a route in arrival order.
func (a *ApiMock) Requests(method, path string) []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests[method+path]...)
}

// Reset forgets recorded calls and configured responses.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = map[string][]Request{}
	a.statuses = map[string]int{}
	a.responses = map[string]map[string]any{}
}
