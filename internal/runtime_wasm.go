//go:build wasm

package internal

import "sync"

// wasm hosts are single-goroutine, so one global runtime is enough.

var once sync.Once
var globalRuntime *Runtime

func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = NewRuntime()
	})

	return globalRuntime
}
