package task

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	domain "github.com/example/task-approval/domain/task"
	fsjetstream "github.com/go-monolith/mono/plugin/fs-jetstream"
	"github.com/jaevor/go-nanoid"
)

// AttachmentBucket is the fs-jetstream bucket attachments are stored in.
const AttachmentBucket = "attachments"

// JetStreamBlobStore stores attachments in an fs-jetstream bucket.
type JetStreamBlobStore struct {
	bucket fsjetstream.FileStoragePort
}

// NewJetStreamBlobStore wraps bucket.
func NewJetStreamBlobStore(bucket fsjetstream.FileStoragePort) *JetStreamBlobStore {
	return &JetStreamBlobStore{bucket: bucket}
}

// Put stores data under key.
func (s *JetStreamBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (BlobInfo, error) {
	info, err := s.bucket.Put(ctx, key, data,
		fsjetstream.WithDescription(fmt.Sprintf("Attachment: %s", key)),
		fsjetstream.WithHeaders(map[string]string{
			"Content-Type": contentType,
			"Uploaded-At":  time.Now().Format(time.RFC3339),
		}),
	)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("failed to store attachment: %w", err)
	}
	return BlobInfo{Size: int64(info.Size), Digest: info.Digest}, nil
}

// Delete removes the blob stored under key.
func (s *JetStreamBlobStore) Delete(key string) error {
	if err := s.bucket.Delete(key); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// sanitizeFilename keeps only the base name so uploads cannot escape their
// key prefix.
func sanitizeFilename(filename string) string {
	clean := filepath.Base(filepath.Clean(filename))
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "\\", "_")
	if clean == "." || clean == ".." || clean == "" {
		return "unnamed"
	}
	return clean
}

// newAttachmentID returns a short URL-safe id; it is safe for concurrent use.
var newAttachmentID = func() func() string {
	gen, err := nanoid.Standard(12)
	if err != nil {
		panic(fmt.Sprintf("failed to create attachment id generator: %v", err))
	}
	return gen
}()

func attachmentKeyPrefix(taskID string) string {
	return "tasks/" + taskID + "/"
}

func attachmentKey(taskID, attachmentID, name string) string {
	return attachmentKeyPrefix(taskID) + attachmentID + "/" + name
}

// ownsBlob reports whether key lies under the task's own key prefix.
func ownsBlob(taskID, key string) bool {
	return key != "" && strings.HasPrefix(key, attachmentKeyPrefix(taskID))
}

// describeAttachments turns caller-supplied descriptors into attachments that
// reference no stored blob. Keys are dropped so a descriptor can never point
// at another task's files.
func describeAttachments(files []domain.Attachment, actorID string, now time.Time) []domain.Attachment {
	out := make([]domain.Attachment, 0, len(files))
	for _, f := range files {
		out = append(out, domain.Attachment{
			ID:          newAttachmentID(),
			Name:        sanitizeFilename(f.Name),
			Size:        f.Size,
			ContentType: f.ContentType,
			Digest:      f.Digest,
			UploadedBy:  actorID,
			UploadedAt:  now,
		})
	}
	return out
}
