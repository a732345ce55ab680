// internal/config/cli_flags.go
package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "30s", "Navigation timeout per attempt")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().Int("max-sessions", DefaultMaxSessions, "Maximum concurrent browser sessions")
	cmd.PersistentFlags().Bool("headless", DefaultHeadless, "Run the browser headless")
	cmd.PersistentFlags().String("session", "", "Named cookie set to inject before navigation")
}
