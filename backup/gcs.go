// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBackend stores backups in a Google Cloud Storage bucket.
type GCSBackend struct {
	client     *storage.Client
	BucketName string
}

// NewGCSBackend connects to GCS. With an empty credentials path the
// client uses Application Default Credentials.
func NewGCSBackend(ctx context.Context, bucketName, credentialsFile string) (*GCSBackend, error) {
	if bucketName == "" {
		return nil, errors.New("bucket name is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", credentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCSBackend{client: client, BucketName: bucketName}, nil
}

func (g *GCSBackend) Name() string {
	return "gs://" + g.BucketName
}

func (g *GCSBackend) Put(ctx context.Context, key string, data []byte) error {
	writer := g.client.Bucket(g.BucketName).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write GCS object %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", key, err)
	}
	return nil
}

func (g *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := g.client.Bucket(g.BucketName).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %s: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", key, err)
	}
	return data, nil
}

func (g *GCSBackend) Close() error {
	return g.client.Close()
}
