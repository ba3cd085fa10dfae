package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var moderateCmd = &cobra.Command{
	Use:   "moderate <comment-id> <approved|rejected|spam>",
	Short: "Assign a moderation status to a comment",
	Long:  "Mark a comment approved, rejected or spam. Requires admin or ownership of the instante.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("user.token")
		if token == "" {
			return fmt.Errorf("not logged in. Please run: diarioctl auth login")
		}

		commentID, action := args[0], args[1]

		body, _ := json.Marshal(map[string]string{"action": action})
		url := fmt.Sprintf("%s/api/v1/comments/%s/moderate", viper.GetString("server.url"), commentID)

		req, _ := http.NewRequest("POST", url, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to moderate comment: %w", err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		var result map[string]interface{}
		json.Unmarshal(respBody, &result)

		if result["success"] != true {
			return fmt.Errorf("failed: %v", result["error"])
		}

		fmt.Printf("✓ Comment %s marked %s\n", commentID, action)
		return nil
	},
}

func init() {
	CommentsCmd.AddCommand(moderateCmd)
}
