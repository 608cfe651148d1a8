//go:build !no_pprof

package main

import (
	"flag"

	"fortio.org/log"
	"github.com/pkg/profile"
)

var (
	profileMode = flag.String("profile", "", "profile `mode` to enable: cpu, mem, block, mutex, goroutine or trace")
	profilePath = flag.String("profile-dir", ".", "`directory` to write the profile to")
	profiler    interface{ Stop() }
)

var profileModes = map[string]func(*profile.Profile){
	"cpu":       profile.CPUProfile,
	"mem":       profile.MemProfile,
	"block":     profile.BlockProfile,
	"mutex":     profile.MutexProfile,
	"goroutine": profile.GoroutineProfile,
	"trace":     profile.TraceProfile,
}

func init() {
	hookBefore = pprofBeforeHook
	hookAfter = pprofAfterHook
}

func pprofBeforeHook() int {
	if *profileMode == "" {
		return 0
	}
	mode, ok := profileModes[*profileMode]
	if !ok {
		return log.FErrf("unknown profile mode %q", *profileMode)
	}
	profiler = profile.Start(mode, profile.ProfilePath(*profilePath), profile.Quiet, profile.NoShutdownHook)
	log.Infof("Writing %s profile to %s", *profileMode, *profilePath)
	return 0
}

func pprofAfterHook() int {
	if profiler != nil {
		profiler.Stop()
		log.Infof("Wrote %s profile to %s", *profileMode, *profilePath)
	}
	return 0
}
