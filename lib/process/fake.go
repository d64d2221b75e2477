// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"context"
	"sync"
)

// Invocation is one call recorded by a FakeRunner.
type Invocation struct {
	Name string
	Args []string
}

// FakeRunner is a Runner for tests. It records every invocation and
// answers from Handler, or with empty output when Handler is nil.
type FakeRunner struct {
	// Handler produces the result for an invocation. It runs
	// synchronously inside Run, so it may create files the caller
	// expects the real tool to produce.
	Handler func(name string, args []string) (string, error)

	mu          sync.Mutex
	invocations []Invocation
}

// Run records the invocation and delegates to Handler.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.invocations = append(f.invocations, Invocation{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(name, args)
}

// Invocations returns a copy of the recorded invocations in call order.
func (f *FakeRunner) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.invocations...)
}
