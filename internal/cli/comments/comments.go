package comments

import "github.com/spf13/cobra"

var CommentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Comment moderation commands",
	Long:  "Review the moderation queue and assign statuses to comments",
}
