package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSArchive stores exported documents as objects in a Google Cloud Storage bucket.
type GCSArchive struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

// ParseArchiveURL splits a gs://bucket/prefix URL into the bucket name and object prefix.
func ParseArchiveURL(url string) (string, string, error) {
	match := regexp.MustCompile(`^gs://([^/]+)(?:/(.*))?$`).FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 {
		return "", "", fmt.Errorf("invalid archive URL '%v' - expected something like 'gs://bucket/results'", url)
	}

	return match[1], strings.Trim(match[2], "/"), nil
}

func NewGCSArchive(ctx context.Context, url string, opts ...option.ClientOption) (*GCSArchive, error) {
	bucket, prefix, err := ParseArchiveURL(url)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Cloud Storage client (%w)", err)
	}

	return &GCSArchive{
		Client: client,
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

func (a *GCSArchive) Store(ctx context.Context, name string, r io.Reader) error {
	object := name
	if a.Prefix != "" {
		object = path.Join(a.Prefix, name)
	}

	w := a.Client.Bucket(a.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = PDF

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

func (a *GCSArchive) Close() error {
	return a.Client.Close()
}
