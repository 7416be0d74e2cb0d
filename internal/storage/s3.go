package storage

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/medisure/claims-portal/internal/apperr"
)

// Presigner is the subset of the S3 presign client the store needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements ObjectStore against an S3 bucket. Objects are written
// with bucket-default KMS encryption.
type S3Store struct {
	client    putObjectAPI
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

// NewS3Store builds an S3-backed document store.
func NewS3Store(client *s3.Client, bucket string, ttl time.Duration) *S3Store {
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		ttl:       ttl,
	}
}

// PresignUpload generates a presigned PUT URL for the given key.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (string, time.Duration, error) {
	if contentType == "" {
		contentType = documentContentType
	}
	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAwsKms,
	}
	req, err := s.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = s.ttl })
	if err != nil {
		return "", 0, apperr.Dependency("presign upload", err)
	}
	return req.URL, s.ttl, nil
}

// Upload writes the document to the bucket.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if contentType == "" {
		contentType = documentContentType
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAwsKms,
	})
	if err != nil {
		return apperr.Dependency("upload document", err)
	}
	return nil
}
