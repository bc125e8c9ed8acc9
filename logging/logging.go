package logging

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

type Flag int

const (
	Nil Flag = iota
	Performance
	Debug
)

// Mode is set once by the command line driver. It is read-only afterwards.
var (
	Mode Flag = Nil
)

// FlagFromString converts a LogMode config value to a Flag.
func FlagFromString(s string) (Flag, bool) {
	switch s {
	case "", "Nil", "nil":
		return Nil, true
	case "Performance", "performance":
		return Performance, true
	case "Debug", "debug":
		return Debug, true
	}
	return Nil, false
}

// MemString returns a string containing various statistics on the current
// memory usage.
func MemString() string {
	ms := runtime.MemStats{}
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf(
		"Alloc - %d MB; Sys - %d MB; Integrated - %d MB",
		ms.Alloc>>20, ms.Sys>>20, ms.TotalAlloc>>20,
	)
}

// Stage logs the duration of a named stage if performance logging is on.
// It is meant to be used as `defer logging.Stage("name", time.Now())`.
func Stage(name string, start time.Time) {
	if Mode == Nil {
		return
	}
	log.Printf("%-24s %8.3f s  %s", name, time.Since(start).Seconds(),
		MemString())
}

// Debugf logs only in Debug mode.
func Debugf(format string, args ...interface{}) {
	if Mode == Debug {
		log.Printf(format, args...)
	}
}
