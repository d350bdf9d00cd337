// Package exchangetest provides a scripted core.Fetcher for adapter tests.
package exchangetest

import (
	"context"
	"sync"

	"tradegate/pkg/core"
)

// Reply is one scripted transport outcome.
type Reply struct {
	Status  int
	Success any
	Err     error
}

// OK is a 200 reply carrying v.
func OK(v any) Reply {
	return Reply{Status: 200, Success: v}
}

// Fetcher records every request and answers from a handler.
type Fetcher struct {
	mu       sync.Mutex
	handler  func(req *core.Request) Reply
	requests []*core.Request
}

// NewFetcher returns a Fetcher answering with handler.
func NewFetcher(handler func(req *core.Request) Reply) *Fetcher {
	return &Fetcher{handler: handler}
}

// Fetch implements core.Fetcher.
func (f *Fetcher) Fetch(_ context.Context, req *core.Request) (int, any, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	r := f.handler(req)
	return r.Status, r.Success, r.Err
}

// Requests returns the requests seen so far.
func (f *Fetcher) Requests() []*core.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*core.Request(nil), f.requests...)
}

// Count returns how many requests hit path.
func (f *Fetcher) Count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, req := range f.requests {
		if req.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request, or nil.
func (f *Fetcher) Last() *core.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}
