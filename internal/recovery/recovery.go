// internal/recovery/recovery.go

// Package recovery turns panics into a logged stack trace and exit code 1,
// silencing the sidetone first where a cleanup is supplied.
package recovery

import (
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
)

// HandlePanic is deferred at the top of main.
func HandlePanic() {
	if r := recover(); r != nil {
		fatal(r, nil)
	}
}

// HandlePanicFunc logs the panic, runs cleanup (if any) and exits.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		fatal(r, cleanup)
	}
}

// fatal is called from the deferred handlers; recover only works in them.
func fatal(r any, cleanup func()) {
	log.Error("FATAL", "panic", r, "stack", string(debug.Stack()))
	if cleanup != nil {
		cleanup()
	}
	os.Exit(1)
}

// Go runs fn on a new goroutine that exits the process through
// HandlePanicFunc if fn panics.
func Go(fn, cleanup func()) {
	go func() {
		defer HandlePanicFunc(cleanup)
		fn()
	}()
}
