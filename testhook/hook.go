// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package testhook runs registered checks around a package's tests.
package testhook

import (
	"fmt"
	"os"
	"sync"
	"testing"
)

// Callback is a check run before or after a package's tests.
type Callback func() error

var preHooks []Callback
var postHooks []Callback
var mu sync.Mutex

// RegisterPostTestHook registers a function to be called after tests
// are run. It should return a nil error if it's okay, and a non-nil
// error to cause a non-zero exit status.
func RegisterPostTestHook(fn Callback) {
	mu.Lock()
	defer mu.Unlock()
	postHooks = append(postHooks, fn)
}

// RegisterPreTestHook registers a function to be called before tests
// are run. A non-nil error aborts the run.
func RegisterPreTestHook(fn Callback) {
	mu.Lock()
	defer mu.Unlock()
	preHooks = append(preHooks, fn)
}

// RunTestsWithHooks is a suitable implementation for TestMain; you can
// just invoke this from your TestMain, passing in m, and it runs the tests
// and then runs any registered pre/post hooks. If the hooks themselves try
// to register hooks, you will deadlock. Don't do that.
func RunTestsWithHooks(m *testing.M) {
	os.Exit(run(m))
}

type runner interface {
	Run() int
}

func run(m runner) int {
	var ret int
	mu.Lock()
	for _, fn := range preHooks {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "pre-hook failure: %v\n", err)
			ret = 1
		}
	}
	mu.Unlock()
	if ret != 0 {
		fmt.Fprint(os.Stderr, "pre-hooks failed, aborting.\n")
		return ret
	}
	ret = m.Run()
	mu.Lock()
	defer mu.Unlock()
	for _, fn := range postHooks {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "post-hook failure: %v\n", err)
			ret = 1
		}
	}
	return ret
}

// TempDir creates a temp directory that is removed when the test
// completes.
func TempDir(tb testing.TB, pattern string) (path string, err error) {
	path, err = os.MkdirTemp("", pattern)
	if err == nil {
		tb.Cleanup(func() {
			os.RemoveAll(path)
		})
	}
	return path, err
}
