// internal/cli/context.go

// Package cli provides the command-line interface for the snip application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/app"
)

// globalApp is set by the root command's PersistentPreRunE and shared by all
// subcommands for the lifetime of one invocation.
var globalApp *app.Application

// SetApp stores the Application for command handlers.
func SetApp(_ *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application.
func GetApp() *app.Application {
	return globalApp
}
