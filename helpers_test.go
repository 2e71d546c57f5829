package main

import (
	"context"
	"sync"
)

// fakeGateway answers upstream calls from a canned response table keyed by
// "class/method". A handler function can be set instead for per-payload
// behavior.
type fakeGateway struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	handler   func(request GatewayRequest) (any, error)
	calls     []string
}

func (f *fakeGateway) makeRequest(_ context.Context, _ httpMethod, request GatewayRequest) (any, error) {
	key := request.Params.C + "/" + request.Params.M

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if f.handler != nil {
		return f.handler(request)
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if response, ok := f.responses[key]; ok {
		return response, nil
	}
	return map[string]any{}, nil
}
