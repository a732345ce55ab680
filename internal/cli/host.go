// internal/cli/host.go
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/ui"
	"github.com/law-makers/snip/pkg/models"
)

var hostFlags struct {
	selector string
	ttl      time.Duration
	wait     string
}

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Persist extracted components for later serving",
}

var hostAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Extract a component and store it under a short id",
	Example: `  # Extract and host a navigation bar for a day
  snip host add https://example.com --selector "nav.main" --ttl 24h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application := GetApp()

		opts := models.DefaultOptions()
		wait, err := models.ParseWaitStrategy(hostFlags.wait)
		if err != nil {
			return err
		}
		opts.WaitStrategy = wait

		component, err := application.Extractor.Extract(cmd.Context(), args[0], hostFlags.selector, opts)
		if err != nil {
			return err
		}

		id, err := application.Hosting.Save(component, hostFlags.ttl)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Hosted component " + id))
		return nil
	},
}

var hostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosted components",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metas, err := GetApp().Hosting.List()
		if err != nil {
			return err
		}
		if len(metas) == 0 {
			fmt.Println("No hosted components")
			return nil
		}
		for _, m := range metas {
			expiry := "never"
			if !m.ExpiresAt.IsZero() {
				expiry = m.ExpiresAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  %s  %s  views=%d  expires=%s\n",
				m.ID, m.SourceURL, m.Selector, m.Views, expiry)
		}
		return nil
	},
}

var hostShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a hosted component's HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, _, err := GetApp().Hosting.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Println(html)
		return nil
	},
}

var hostDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a hosted component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := GetApp().Hosting.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("Deleted "+args[0]))
		return nil
	},
}

func init() {
	f := hostAddCmd.Flags()
	f.StringVarP(&hostFlags.selector, "selector", "s", "", "CSS selector of the component root (required)")
	f.DurationVar(&hostFlags.ttl, "ttl", 0, "Expiry for the hosted component, 0 = never")
	f.StringVar(&hostFlags.wait, "wait", "load", "Wait strategy: load, domcontentloaded, networkidle, none")
	hostAddCmd.MarkFlagRequired("selector")

	hostCmd.AddCommand(hostAddCmd, hostListCmd, hostShowCmd, hostDeleteCmd)
	rootCmd.AddCommand(hostCmd)
}
