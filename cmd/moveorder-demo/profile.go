package main

import (
	"log"
	"os"
	"runtime/pprof"
)

// startProfiling begins CPU profiling to path and returns a func that stops
// it and closes the file, meant to be deferred by the caller.
func startProfiling(path string) func() {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal("could not create CPU profile: ", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatal("could not start CPU profile: ", err)
	}
	log.Printf("CPU profiling enabled, writing to %s", path)

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
