// Package attachments hands out presigned object-storage links for note
// attachments and project thumbnails. Records keep only the object key.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/amanotes/internal/netx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	newKeyID = uuid.NewString
)

var ErrNotConfigured = errors.New("object storage is not configured")

type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	Expiry       time.Duration
}

func (c Config) Enabled() bool {
	return c.Bucket != "" && c.BaseEndpoint != ""
}

type Presigner struct {
	pc     *s3.PresignClient
	bucket string
	expiry time.Duration
	now    func() time.Time
	http   *http.Client
}

func NewPresigner(ctx context.Context, c Config) (*Presigner, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("object storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.BaseEndpoint)
		o.UsePathStyle = true
	})
	expiry := c.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Presigner{pc: s3.NewPresignClient(client), bucket: c.Bucket, expiry: expiry, now: time.Now, http: &http.Client{Timeout: time.Minute}}, nil
}

// NewKey returns a fresh object key under the owner's prefix, e.g.
// "notes/<owner>/2025/03/<uuid>.png".
func (p *Presigner) NewKey(kind, ownerID, filename string) string {
	d := p.now().UTC()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%04d/%02d/%s%s", kind, ownerID, d.Year(), d.Month(), newKeyID(), ext)
}

// PutURL presigns an upload for key.
func (p *Presigner) PutURL(ctx context.Context, key string) (string, error) {
	req, err := presignPutObject(p.pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign upload %s: %w", key, err)
	}
	return req.URL, nil
}

// GetURL presigns a download for key.
func (p *Presigner) GetURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	req, err := presignGetObject(p.pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("presign download %s: %w", key, err)
	}
	return req.URL, nil
}

// Upload stores body under a new key and returns the key.
func (p *Presigner) Upload(ctx context.Context, kind, ownerID, filename string, body []byte) (string, error) {
	key := p.NewKey(kind, ownerID, filename)
	u, err := p.PutURL(ctx, key)
	if err != nil {
		return "", err
	}
	ct := mime.TypeByExtension(path.Ext(filename))
	if err := netx.PutPresigned(ctx, p.http, u, ct, body); err != nil {
		return "", err
	}
	return key, nil
}
