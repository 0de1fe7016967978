package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smartcents/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess  = 0
	ExitFailure  = 1 // storage or unexpected failure
	ExitUsage    = 2 // rejected input
	ExitAuth     = 3 // missing session or bad credentials
	ExitNotFound = 4
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, core.ErrNotAuthenticated), errors.Is(err, core.ErrInvalidCredentials):
		return ExitAuth
	case core.IsNotFound(err):
		return ExitNotFound
	case core.IsValidation(err), errors.Is(err, core.ErrDuplicateIdentity), errors.Is(err, errUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// render writes data as indented JSON, or through text in text mode.
func (a *App) render(cmd *cobra.Command, data any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	if a.opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return text(w)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
