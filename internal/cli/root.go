// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/app"
	"github.com/law-makers/snip/internal/config"
	"github.com/law-makers/snip/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "snip",
	Short:   "Extract self-contained components from live web pages",
	Long:    `Snip loads a page in a headless browser and extracts any element as a portable component: its markup, every CSS rule that styles it, its JavaScript behavior and its assets, rewritten to work standalone.`,
	Version: "0.1.0",
}

// Execute runs the CLI. The application is initialized lazily in
// PersistentPreRunE so -h and --version never start a browser.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}
		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.NavigationTimeout*2)
		defer cancel()
		application, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		if set, _ := cmd.Flags().GetString("session"); set != "" {
			application.Extractor.CookieSet = set
		}

		SetApp(cmd, application)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		application := GetApp()
		if application == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), application.Config.NavigationTimeout)
		defer cancel()
		_ = application.Close(ctx)
		SetApp(cmd, nil)
	}
}

// customHelpFunc prints colorized help in the usual layout: usage, examples,
// commands, flags.
func customHelpFunc(cmd *cobra.Command, args []string) {
	out := os.Stdout

	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintf(out, "%s\n", cmd.Short)
	}

	fmt.Fprintf(out, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	if cmd.Runnable() {
		fmt.Fprintf(out, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "  %s%s%s %s<command>%s [flags]\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset, ui.ColorYellow, ui.ColorReset)
	}

	if cmd.HasExample() {
		fmt.Fprintf(out, "\n%sExamples%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				fmt.Fprintf(out, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			} else {
				fmt.Fprintf(out, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "\n%sCommands%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		maxLen := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && len(c.Name()) > maxLen {
				maxLen = len(c.Name())
			}
		}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.Name() == "help" {
				continue
			}
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(out, "  %s%s%s%s%s%s%s\n",
				ui.ColorCyan, c.Name(), ui.ColorReset, padding, ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(out, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		fmt.Fprint(out, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(out, "\n%sGlobal Flags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		fmt.Fprint(out, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(out)
}
