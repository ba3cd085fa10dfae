package comments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List comments awaiting moderation",
	Long:  "View the moderation queue, newest first. Requires an admin session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("user.token")
		if token == "" {
			return fmt.Errorf("not logged in. Please run: diarioctl auth login")
		}

		url := viper.GetString("server.url") + "/api/v1/admin/comments/pending"
		if instanteID, _ := cmd.Flags().GetString("instante"); instanteID != "" {
			url += "?instante_id=" + instanteID
		}

		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("Authorization", "Bearer "+token)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch moderation queue: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(respBody, &result)

		if result["success"] != true {
			return fmt.Errorf("failed: %v", result["error"])
		}

		data := result["data"].(map[string]interface{})
		pending := data["comments"].([]interface{})

		if len(pending) == 0 {
			fmt.Println("Moderation queue is empty.")
			return nil
		}

		fmt.Printf("\nPending comments (%d):\n\n", len(pending))
		for i, item := range pending {
			comment := item.(map[string]interface{})
			fmt.Printf("%d. [%s]\n", i+1, comment["id"].(string))
			fmt.Printf("   Instante: %s\n", comment["instante_id"].(string))
			fmt.Printf("   Author:   %s\n", comment["user_name"].(string))
			fmt.Printf("   Posted:   %s\n", comment["created_at"].(string))
			fmt.Printf("   %s\n", comment["content"].(string))
			fmt.Println()
		}

		return nil
	},
}

func init() {
	pendingCmd.Flags().String("instante", "", "Limit the queue to one instante ID")
	CommentsCmd.AddCommand(pendingCmd)
}
