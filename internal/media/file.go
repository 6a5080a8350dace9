package media

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// File is a stored image. ID and Name locate the blob under the media
// directory.
type File struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Src  string    `json:"src,omitempty"`
	Alt  string    `json:"alt,omitempty"`
}

// DeletionEvent asks the deletion worker to remove one object.
type DeletionEvent struct {
	ObjectKey   string    `json:"object_key"`
	Bucket      string    `json:"bucket,omitempty"`
	FileID      uuid.UUID `json:"file_id"`
	Name        string    `json:"name"`
	RequestedAt time.Time `json:"requested_at"`
}

const (
	EventTypeAttr          = "eventType"
	DeletionRequestedEvent = "MEDIA_DELETE_REQUESTED"
)

// ObjectKey is the storage path of a file: <dir>/<id>/<name>.
func ObjectKey(dir string, id uuid.UUID, name string) string {
	clean := sanitizeFileName(name)
	if clean == "" {
		clean = id.String()
	}
	return fmt.Sprintf("%s/%s/%s", strings.Trim(dir, "/"), id.String(), clean)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(strings.ReplaceAll(name, "\\", "/")))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}

// imageContentType normalizes a content type and reports whether it is an
// image.
func imageContentType(value string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType, strings.HasPrefix(mediaType, "image/")
}
