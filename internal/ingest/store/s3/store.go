package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docscan-backend/internal/ingest/store"
)

// Store implements ArtifactStore on Amazon S3. Namespaces map to key
// prefixes under the configured bucket prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed artifact store.
func New(ctx context.Context, region, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Save uploads the reader contents, overwriting any existing object.
func (s *Store) Save(ctx context.Context, ns store.Namespace, name string, r io.Reader) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	key := s.objectKey(ns, name)

	overwrote := true
	if _, err := s.head(ctx, key); err != nil {
		if !errors.Is(err, store.ErrNotExist) {
			return 0, false, err
		}
		overwrote = false
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 counter,
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, false, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return counter.n, overwrote, nil
}

// Open downloads a stored artifact for reading.
func (s *Store) Open(ctx context.Context, ns store.Namespace, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := s.objectKey(ns, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3 get object key=%s: %w", key, store.ErrNotExist)
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// Stat reports metadata for a stored artifact.
func (s *Store) Stat(ctx context.Context, ns store.Namespace, name string) (store.Info, error) {
	if err := ctx.Err(); err != nil {
		return store.Info{}, err
	}

	out, err := s.head(ctx, s.objectKey(ns, name))
	if err != nil {
		return store.Info{}, err
	}

	info := store.Info{Name: name}
	if out.ContentLength != nil {
		info.SizeBytes = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModifiedAt = *out.LastModified
	}
	return info, nil
}

// List enumerates all artifacts in a namespace.
func (s *Store) List(ctx context.Context, ns store.Namespace) ([]store.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := s.objectKey(ns, "")
	var infos []store.Info

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list bucket=%s prefix=%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name := strings.TrimPrefix(*obj.Key, prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			info := store.Info{Name: name}
			if obj.Size != nil {
				info.SizeBytes = *obj.Size
			}
			if obj.LastModified != nil {
				info.ModifiedAt = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// Delete removes an artifact; a missing artifact is not an error.
func (s *Store) Delete(ctx context.Context, ns store.Namespace, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := s.objectKey(ns, name)
	if _, err := s.head(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return true, nil
}

func (s *Store) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("s3 head object key=%s: %w", key, store.ErrNotExist)
		}
		return nil, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return out, nil
}

func (s *Store) objectKey(ns store.Namespace, name string) string {
	key := string(ns) + "/" + name
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ store.ArtifactStore = (*Store)(nil)
