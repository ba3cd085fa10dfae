package invites

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invite codes and their redemption state",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("user.token")
		if token == "" {
			return fmt.Errorf("not logged in. Please run: diarioctl auth login")
		}

		url := viper.GetString("server.url") + "/api/v1/admin/invites"

		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to list invites: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(respBody, &result)

		if result["success"] != true {
			return fmt.Errorf("failed: %v", result["error"])
		}

		data := result["data"].(map[string]interface{})
		invites := data["invites"].([]interface{})

		if len(invites) == 0 {
			fmt.Println("No invites minted yet.")
			return nil
		}

		fmt.Printf("\nInvites (%d):\n\n", len(invites))
		for i, item := range invites {
			invite := item.(map[string]interface{})
			fmt.Printf("%d. %s\n", i+1, invite["code"].(string))
			if usedBy, ok := invite["used_by"].(string); ok {
				fmt.Printf("   Status: used by %s\n", usedBy)
			} else {
				fmt.Printf("   Status: unused\n")
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	InvitesCmd.AddCommand(listCmd)
}
