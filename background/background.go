// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Sovereign Net Authors.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - start and cleanly stop sets of goroutines
package background

// the shutdown and completed channels for one background process
type shutdown struct {
	shutdown chan bool
	finished chan bool
}

// T - handle for later stopping
type T struct {
	s []shutdown
}

// Process - type signature for a background process
type Process func(args interface{}, shutdown <-chan bool, done chan<- bool)

// Processes - list of processes to start
type Processes []Process

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := new(T)
	register.s = make([]shutdown, len(processes))

	// start each background
	for i, p := range processes {
		stop := make(chan bool)
		finished := make(chan bool)
		register.s[i].shutdown = stop
		register.s[i].finished = finished
		go p(args, stop, finished)
	}
	return register
}

// Stop - stop a set of background processes
func Stop(t *T) {

	if nil == t {
		return
	}

	// shutdown all background tasks
	for _, shutdown := range t.s {
		close(shutdown.shutdown)
	}

	// wait for finished
	for _, shutdown := range t.s {
		<-shutdown.finished
	}
}
