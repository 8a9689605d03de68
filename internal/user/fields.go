// AngelaMos | 2026
// fields.go

package user

import (
	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// updatableFields lists every field a profile update may touch, keyed by
// its JSON name.
var updatableFields = core.FieldMap{
	"username":  "username",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"avatarUrl": "avatar_url",
}
