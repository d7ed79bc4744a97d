package hub

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tunesmith-ml/tunesmith/go-controller/internal/dataset"
)

// #region config
const defaultTimeout = 180 * time.Second

// Split names under a dataset prefix.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
)

// #endregion config

// #region uploader-interface
// Uploader abstracts the S3 upload manager so pushes can be tested without
// object storage.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// #endregion uploader-interface

// #region client
// Client pushes prepared dataset splits to an S3-compatible bucket, one
// JSONL object per split under <username>/autotrain-data-<project>/.
type Client struct {
	bucket   string
	username string
	uploader Uploader
}

// NewClient loads AWS configuration from the environment, verifies the
// bucket exists, and returns a hub client.
func NewClient(ctx context.Context, bucket, username string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	headCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if _, err := s3Client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("head bucket %s: %w", bucket, err)
	}

	return &Client{
		bucket:   bucket,
		username: username,
		uploader: manager.NewUploader(s3Client),
	}, nil
}

// NewClientWithUploader creates a Client with an injected uploader. Used
// for testing without object storage.
func NewClientWithUploader(bucket, username string, up Uploader) *Client {
	return &Client{bucket: bucket, username: username, uploader: up}
}

// #endregion client

// #region push
// DatasetURI returns the s3:// prefix the splits of a project live under.
func (c *Client) DatasetURI(project string) string {
	return fmt.Sprintf("s3://%s/%s/autotrain-data-%s", c.bucket, c.username, project)
}

// PushSplits uploads the train and validation splits and returns the
// dataset URI the trainer should read from.
func (c *Client) PushSplits(ctx context.Context, project string, train, valid *dataset.Table) (string, error) {
	if err := c.pushSplit(ctx, project, SplitTrain, train); err != nil {
		return "", err
	}
	if err := c.pushSplit(ctx, project, SplitValidation, valid); err != nil {
		return "", err
	}
	return c.DatasetURI(project), nil
}

func (c *Client) pushSplit(ctx context.Context, project, split string, t *dataset.Table) error {
	var buf bytes.Buffer
	if err := t.ToJSONL(&buf); err != nil {
		return fmt.Errorf("serialize %s split: %w", split, err)
	}

	key := fmt.Sprintf("%s/autotrain-data-%s/%s.jsonl", c.username, project, split)
	upCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := c.uploader.Upload(upCtx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/jsonl"),
	})
	if err != nil {
		return fmt.Errorf("upload %s split to %s: %w", split, key, err)
	}
	return nil
}

// #endregion push
