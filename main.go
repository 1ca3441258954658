package main

import (
	"os"

	"github.com/example/memorizer/internal/apperr"
)

func main() {
	root, cleanup := newRootCmd()
	err := root.Execute()
	cleanup()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error kind to a process exit status
func exitCode(err error) int {
	switch apperr.CodeOf(err, "") {
	case apperr.CodeInvalidInput:
		return 2
	case apperr.CodeNotFound:
		return 3
	case apperr.CodeStorageUnavailable:
		return 4
	default:
		return 1
	}
}
