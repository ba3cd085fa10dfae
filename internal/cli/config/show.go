package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the server URL and the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Diario CLI Configuration:")
		fmt.Println("")
		fmt.Printf("Server:\n")
		fmt.Printf("  URL: %s\n", viper.GetString("server.url"))
		fmt.Println("")

		username := viper.GetString("user.username")
		token := viper.GetString("user.token")

		if username != "" {
			fmt.Printf("User:\n")
			fmt.Printf("  Username: %s\n", username)
			if token != "" {
				if len(token) > 20 {
					fmt.Printf("  Token: %s...\n", token[:20])
				} else {
					fmt.Printf("  Token: %s\n", token)
				}
				fmt.Printf("  Status: ✓ Logged in\n")
			} else {
				fmt.Printf("  Status: ✗ Not logged in\n")
			}
		} else {
			fmt.Printf("User: Not logged in\n")
			fmt.Printf("  Run 'diarioctl auth login' to authenticate\n")
		}
	},
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
