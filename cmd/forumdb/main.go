// Package main provides the entry point for the forumdb CLI.
package main

import (
	"os"

	"github.com/forumdb/forumdb/cmd/forumdb/cmd"
	apperrors "github.com/forumdb/forumdb/pkg/errors"
)

func main() {
	os.Exit(apperrors.ExitCode(cmd.Execute()))
}
