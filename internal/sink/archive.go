package sink

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSArchive writes record copies to a Cloud Storage bucket, one object
// per transaction under transactions/YYYY/MM/DD/.
type GCSArchive struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewGCSArchive(client *storage.Client, bucket string) *GCSArchive {
	return &GCSArchive{client: client, bucket: bucket, now: time.Now}
}

// Archive uploads data and returns the gs:// URI of the new object.
func (a *GCSArchive) Archive(ctx context.Context, data []byte) (string, error) {
	objectName := fmt.Sprintf("transactions/%s/%s.json", a.now().UTC().Format("2006/01/02"), uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("archive: write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("archive: finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}
