// AngelaMos | 2026
// fields.go

package post

import (
	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// updatableFields maps JSON field names to columns. author_id and slug are
// deliberately absent: neither changes after creation.
var updatableFields = core.FieldMap{
	"title":         "title",
	"content":       "content",
	"status":        "status",
	"featuredImage": "featured_image",
	"tags":          "tags",
}
