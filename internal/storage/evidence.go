// Package storage uploads evidence files to the Firebase storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var ErrUnsupportedType = errors.New("unsupported content type")

type EvidenceStore struct {
	client *gcs.Client
	bucket string
}

func NewEvidenceStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*EvidenceStore, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &EvidenceStore{client: client, bucket: bucket}, nil
}

func (s *EvidenceStore) Close() error {
	return s.client.Close()
}

// Upload writes the evidence object with a fresh download token and returns
// the tokenized public URL.
func (s *EvidenceStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	switch contentType {
	case "image/png", "image/jpeg", "application/pdf":
	default:
		return "", ErrUnsupportedType
	}
	token := uuid.NewString()
	obj := s.client.Bucket(s.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	escapedPath := url.PathEscape(objectPath)
	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucket, escapedPath, token)
	return publicURL, nil
}

// ObjectPath builds a collision-free path for an evidence upload.
func ObjectPath(kind string, entityID uint64, filename string) string {
	return fmt.Sprintf("evidence/%s/%d/%s-%s", kind, entityID, uuid.NewString()[:8], filename)
}
