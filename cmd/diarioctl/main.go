// Command diarioctl is the admin client for a diario server: session
// login, the comment moderation queue and invite management.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diario/internal/cli/auth"
	"diario/internal/cli/comments"
	cliconfig "diario/internal/cli/config"
	"diario/internal/cli/invites"
)

var rootCmd = &cobra.Command{
	Use:   "diarioctl",
	Short: "Admin client for Diario de un Instante",
	Long:  "Moderate comments, mint invites and manage your session from the terminal",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("server", "", "server base URL (default http://localhost:8080)")
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(comments.CommentsCmd)
	rootCmd.AddCommand(invites.InvitesCmd)
	rootCmd.AddCommand(cliconfig.ConfigCmd)
}

// initConfig reads the saved session from ~/.diario/config.yaml
func initConfig() {
	viper.SetDefault("server.url", "http://localhost:8080")

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".diario", "config.yaml"))
	viper.ReadInConfig() // a missing file just means no session yet
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
