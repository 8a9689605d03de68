// AngelaMos | 2026
// authorization.go

package core

import (
	"fmt"
)

type Action string

const (
	ActionUpdatePost Action = "post:update"
	ActionDeletePost Action = "post:delete"
	ActionDeleteUser Action = "user:delete"
)

// Authorize decides whether requesterID may perform action on a resource
// owned by (or, for user deletion, identified by) ownerID. There is no
// administrator bypass; role checks belong here if roles are introduced.
func Authorize(requesterID, ownerID int64, action Action) error {
	switch action {
	case ActionUpdatePost, ActionDeletePost:
		if requesterID != 0 && requesterID == ownerID {
			return nil
		}
		return ForbiddenError("you can only modify your own posts")

	case ActionDeleteUser:
		if requesterID == ownerID {
			return ForbiddenError("cannot delete your own account")
		}
		return nil
	}

	return fmt.Errorf("authorize %s: %w", action, ErrForbidden)
}
