// Package media hands out presigned S3 upload URLs for post images.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	sc "github.com/dmitrijs2005/gopherblog/internal/server/config"
)

const UploadExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Presigner signs PUT requests against an S3-compatible store (MinIO in
// development).
type Presigner struct {
	region   string
	user     string
	password string
	bucket   string
	endpoint string
	now      func() time.Time
}

func NewPresigner(cfg *sc.Config) *Presigner {
	return &Presigner{
		region:   cfg.S3Region,
		user:     cfg.S3RootUser,
		password: cfg.S3RootPassword,
		bucket:   cfg.S3Bucket,
		endpoint: cfg.S3BaseEndpoint,
		now:      time.Now,
	}
}

// ObjectKey returns a fresh key of the form posts/yyyy/m/d/uuid.
func ObjectKey(t time.Time) string {
	return fmt.Sprintf("posts/%d/%d/%d/%v", t.Year(), t.Month(), t.Day(), uuid.New())
}

// PublicURL is where an object under key is served from.
func (p *Presigner) PublicURL(key string) string {
	return strings.TrimRight(p.endpoint, "/") + "/" + p.bucket + "/" + key
}

func (p *Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(p.user, p.password, "")))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignImage returns a presigned PUT URL for a new object and the public
// URL the object will have after upload.
func (p *Presigner) PresignImage(ctx context.Context) (string, string, error) {
	if p.bucket == "" {
		return "", "", common.ErrorStorageDisabled
	}

	pc, err := p.client(ctx)
	if err != nil {
		return "", "", err
	}

	key := ObjectKey(p.now())
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(UploadExpiry))
	if err != nil {
		return "", "", err
	}

	return req.URL, p.PublicURL(key), nil
}
