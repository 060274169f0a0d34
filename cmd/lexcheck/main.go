// Command lexcheck validates legal documents for missing clauses, risky
// language and contradictions.
package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitNonCompliant is returned by analyze --fail-on-noncompliant when any
// document carries a blocking flaw.
const exitNonCompliant = 20

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
