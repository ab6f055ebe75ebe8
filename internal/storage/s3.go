// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for
// post images and applicant CVs. Images go to a public bucket and are
// linked directly; CVs go to a private bucket and are only handed out as
// short-lived presigned links. The client uses path-style addressing so it
// works against CEPH, MinIO and Hetzner as well as AWS.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Key prefixes for the two kinds of object.
const (
	MediaPrefix = "media"
	CVPrefix    = "cv"
)

// Config holds the connection settings. PrivateBucket falls back to
// Bucket when empty.
type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PrivateBucket string
	PublicURL     string // optional CDN or custom domain for public files
}

// Client wraps an S3 client for the site's two buckets.
type Client struct {
	s3            *s3.Client
	presigner     *s3.PresignClient
	publicBucket  string
	privateBucket string
	endpoint      string
	publicURL     string
}

// New creates a storage client. Returns (nil, nil) if the endpoint,
// credentials or bucket are missing, allowing the app to start without
// storage.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, nil
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	private := cfg.PrivateBucket
	if private == "" {
		private = cfg.Bucket
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:            s3Client,
		presigner:     s3.NewPresignClient(s3Client),
		publicBucket:  cfg.Bucket,
		privateBucket: private,
		endpoint:      endpoint,
		publicURL:     strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// ObjectKey builds a fresh key of the form prefix/YYYY/MM/<uuid><ext>.
func ObjectKey(prefix, ext string, now time.Time) string {
	return path.Join(prefix, now.UTC().Format("2006/01"), uuid.NewString()+strings.ToLower(ext))
}

// UploadPublic stores a publicly readable object and returns its URL.
func (c *Client) UploadPublic(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if err := c.put(ctx, c.publicBucket, key, contentType, body, size, true); err != nil {
		return "", err
	}
	return c.FileURL(key), nil
}

// UploadPrivate stores an object that is only reachable through
// PresignedURL.
func (c *Client) UploadPrivate(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return c.put(ctx, c.privateBucket, key, contentType, body, size, false)
}

func (c *Client) put(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64, public bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if public {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// DeletePublic removes an object from the public bucket.
func (c *Client) DeletePublic(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.publicBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.publicBucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for a file in the public bucket.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.publicBucket + "/" + key
}

// PresignedURL generates a pre-signed GET URL for a private object.
func (c *Client) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.privateBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.privateBucket, key, err)
	}
	return req.URL, nil
}

// ExtractKey extracts the object key from a public file URL. It returns
// ("", false) for URLs that do not point into the public bucket.
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	if c.publicURL != "" {
		if key, ok := strings.CutPrefix(rawURL, c.publicURL+"/"); ok && key != "" {
			return key, true
		}
	}
	if key, ok := strings.CutPrefix(rawURL, c.endpoint+"/"+c.publicBucket+"/"); ok && key != "" {
		return key, true
	}
	return "", false
}
