package invites

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a new invite code",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("user.token")
		if token == "" {
			return fmt.Errorf("not logged in. Please run: diarioctl auth login")
		}

		url := viper.GetString("server.url") + "/api/v1/admin/invites"

		req, _ := http.NewRequest("POST", url, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to create invite: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(respBody, &result)

		if result["success"] != true {
			return fmt.Errorf("failed: %v", result["error"])
		}

		invite := result["data"].(map[string]interface{})
		fmt.Println("✓ Invite created!")
		fmt.Printf("  Code: %s\n", invite["code"].(string))
		return nil
	},
}

func init() {
	InvitesCmd.AddCommand(createCmd)
}
