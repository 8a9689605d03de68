// AngelaMos | 2026
// params.go

package core

import (
	"strconv"
)

// ParseID parses a positive integer path parameter.
func ParseID(raw, resource string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, BadRequestError("invalid " + resource + " id")
	}
	return id, nil
}
