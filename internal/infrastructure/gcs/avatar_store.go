package gcs

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/flyobo-travel-api/pkg/helpers"
)

// AvatarStore uploads profile pictures into a bucket.
type AvatarStore struct {
	Client *storage.Client
	Bucket string
}

func NewAvatarStore(client *storage.Client, bucket string) *AvatarStore {
	return &AvatarStore{Client: client, Bucket: bucket}
}

func (s *AvatarStore) Put(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, error) {
	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return helpers.UploadObject(c, s.Client, s.Bucket, helpers.AvatarObjectPath(userID, filename, time.Now()), contentType, r)
}
