package errors

import (
	"fmt"
	"io"
	"os"

	"stretchtime/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report logs err and writes its formatted form to w. It returns false for a nil error.
func Report(w io.Writer, err error) bool {
	if err == nil {
		return false
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return true
}

// Fatal reports err on stderr and exits with status 1.
func Fatal(err error) {
	if Report(os.Stderr, err) {
		os.Exit(1)
	}
}
