package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store archives audit records to a date-partitioned S3 bucket.
type S3Store struct {
	bucket string
	client *s3.S3
}

// NewS3Store builds an S3-backed archive using the default credential chain.
func NewS3Store(region, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &S3Store{bucket: bucket, client: s3.New(sess)}, nil
}

// Put serializes the document as JSON and uploads it under the given key.
func (s *S3Store) Put(ctx context.Context, key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode archive document: %w", err)
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put archive object %s: %w", key, err)
	}
	return nil
}
