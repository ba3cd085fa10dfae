package invites

import "github.com/spf13/cobra"

var InvitesCmd = &cobra.Command{
	Use:   "invites",
	Short: "Invite code commands",
	Long:  "Mint and list single-use registration codes (admin only)",
}
