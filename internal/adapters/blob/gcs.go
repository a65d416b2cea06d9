package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
)

// GCSStore は Google Cloud Storage のバケットへ保存するブロブストアです。
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore は既定の認証情報でクライアントを作成します。
func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob: create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Upload はオブジェクトを上書き保存して公開 URL を返します。
func (s *GCSStore) Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache, max-age=0"

	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("blob: copy to gs://%s/%s: %w", s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("blob: close GCS writer for %s: %w", name, err)
	}

	return publicGCSURL(s.bucket, name), nil
}

// Close はクライアントを閉じます。
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func publicGCSURL(bucket, name string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + name}
	return u.String()
}
