// internal/cli/sessions.go
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"github.com/law-makers/snip/internal/auth"
	"github.com/law-makers/snip/internal/session"
	"github.com/law-makers/snip/internal/ui"
	"github.com/law-makers/snip/pkg/models"
)

var sessionsFlags struct {
	name string
	ttl  time.Duration
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored login cookie sets",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cookie sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := auth.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No stored cookie sets")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import cookies from a JSON export",
	Long:  `Imports a cookie array in the format produced by browser devtools extensions (name, value, domain, path, expires, httpOnly, secure, sameSite).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var cookies []auth.Cookie
		if err := json.Unmarshal(data, &cookies); err != nil {
			return fmt.Errorf("invalid cookie export: %w", err)
		}
		if len(cookies) == 0 {
			return fmt.Errorf("no cookies in %s", args[0])
		}

		set := &auth.CookieSet{
			Name:      sessionsFlags.name,
			Cookies:   cookies,
			CreatedAt: time.Now(),
		}
		if sessionsFlags.ttl > 0 {
			set.ExpiresAt = set.CreatedAt.Add(sessionsFlags.ttl)
		}
		if err := auth.Save(set); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Imported %d cookies as %q", len(cookies), set.Name)))
		return nil
	},
}

var sessionsCaptureCmd = &cobra.Command{
	Use:   "capture <url>",
	Short: "Log in interactively and store the resulting cookies",
	Long:  `Opens the page in a visible browser window. Log in manually, then press Enter here to capture the cookies. Run with --headless=false.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application := GetApp()

		s, err := application.Sessions.CreateSession(cmd.Context(), session.CreateRequest{
			URL:  args[0],
			Wait: models.WaitLoad,
		})
		if err != nil {
			return err
		}
		defer application.Sessions.CloseSession(s.ID)

		fmt.Println(ui.Info("Log in in the browser window, then press Enter to capture cookies..."))
		bufio.NewReader(os.Stdin).ReadString('\n')

		var captured []auth.Cookie
		err = chromedp.Run(s.Context(), chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				captured = append(captured, auth.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Expires:  c.Expires,
					HTTPOnly: c.HTTPOnly,
					Secure:   c.Secure,
					SameSite: string(c.SameSite),
				})
			}
			return nil
		}))
		if err != nil {
			return fmt.Errorf("failed to read cookies: %w", err)
		}

		set := &auth.CookieSet{
			Name:      sessionsFlags.name,
			URL:       args[0],
			Cookies:   captured,
			CreatedAt: time.Now(),
		}
		if sessionsFlags.ttl > 0 {
			set.ExpiresAt = set.CreatedAt.Add(sessionsFlags.ttl)
		}
		if err := auth.Save(set); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Captured %d cookies as %q", len(captured), set.Name)))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored cookie set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Success("Deleted cookie set " + args[0]))
		return nil
	},
}

func init() {
	sessionsImportCmd.Flags().StringVarP(&sessionsFlags.name, "name", "n", "", "Name for the cookie set (required)")
	sessionsImportCmd.Flags().DurationVar(&sessionsFlags.ttl, "ttl", 0, "Expiry for the cookie set, 0 = never")
	sessionsImportCmd.MarkFlagRequired("name")

	sessionsCaptureCmd.Flags().StringVarP(&sessionsFlags.name, "name", "n", "", "Name for the cookie set (required)")
	sessionsCaptureCmd.Flags().DurationVar(&sessionsFlags.ttl, "ttl", 0, "Expiry for the cookie set, 0 = never")
	sessionsCaptureCmd.MarkFlagRequired("name")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsImportCmd, sessionsCaptureCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
