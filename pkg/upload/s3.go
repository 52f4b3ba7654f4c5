// Package upload publishes export artifacts to an S3-compatible bucket.
package upload

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/matzehuels/secassess/pkg/errors"
)

// putter is the subset of *s3.Client used by Uploader.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures [New].
type Options struct {
	Bucket string
	Region string
	// Endpoint selects an S3-compatible service such as MinIO. Setting it
	// enables path-style addressing.
	Endpoint  string
	PathStyle bool
	// Prefix is prepended to every object key.
	Prefix string
}

// Uploader writes artifacts to one bucket.
type Uploader struct {
	client putter
	bucket string
	prefix string
}

// New loads the default AWS credential chain and returns an uploader.
func New(ctx context.Context, opts Options) (*Uploader, error) {
	if opts.Bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upload bucket is not configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpload, err, "load AWS config")
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" || opts.PathStyle {
		s3opts = append(s3opts, func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
			o.UsePathStyle = true
		})
	}
	return &Uploader{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

// Key returns the object key for an artifact of record id.
func (u *Uploader) Key(id, filename string) string {
	return u.prefix + path.Join(id, filename)
}

// Put uploads data under Key(id, filename) and returns its s3:// URL.
func (u *Uploader) Put(ctx context.Context, id, filename, contentType string, data []byte) (string, error) {
	key := u.Key(id, filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(u.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(contentType),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentDisposition: aws.String(`attachment; filename="` + strings.ReplaceAll(filename, `"`, "_") + `"`),
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUpload, err, "put s3://%s/%s", u.bucket, key)
	}
	return "s3://" + u.bucket + "/" + key, nil
}
