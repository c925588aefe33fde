package id

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 lowercase hex characters (a v4 UUID without dashes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ObjectKey builds a collision-free blob key under dir that keeps the
// original file extension, e.g. documents/12/3f9a...c88.pdf.
func ObjectKey(dir, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" {
		return NewID32() + ext
	}
	return dir + "/" + NewID32() + ext
}
