package core

// CanModerate decides whether a caller may change a comment's
// moderation status: global admins always, otherwise only the owner of
// the instante the comment is attached to. The comment's own author
// gets no special right. Pure function; callers resolve the entry
// owner before asking.
func CanModerate(callerUserID string, callerIsGlobalAdmin bool, entryOwnerID string) bool {
	return callerIsGlobalAdmin || callerUserID == entryOwnerID
}
