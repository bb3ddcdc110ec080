package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates an authored grid in a bucket.
type S3Config struct {
	Region         string        `json:"region" yaml:"region"`
	Bucket         string        `json:"bucket" yaml:"bucket"`
	Key            string        `json:"key" yaml:"key"`
	Endpoint       string        `json:"endpoint" yaml:"endpoint"`
	ForcePathStyle bool          `json:"force_path_style" yaml:"force_path_style"`
	AccessKey      string        `json:"access_key" yaml:"access_key"`
	SecretKey      string        `json:"secret_key" yaml:"secret_key"`
	SessionToken   string        `json:"session_token" yaml:"session_token"`
	MaxObjectBytes int64         `json:"max_object_bytes" yaml:"max_object_bytes"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
}

func (c *S3Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Key == "" {
		return fmt.Errorf("key is required")
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.MaxObjectBytes == 0 {
		c.MaxObjectBytes = 10 * 1024 * 1024 // 10MB
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// ObjectGetter is the part of the S3 client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader fetches a grid document from object storage.
type S3Loader struct {
	config S3Config
	client ObjectGetter
}

// NewS3Loader builds an S3 client from the default AWS config chain, static
// credentials when both keys are set, and an optional custom endpoint.
func NewS3Loader(ctx context.Context, cfg S3Config) (*S3Loader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		options.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3LoaderWithClient(cfg, client)
}

// NewS3LoaderWithClient uses an existing client.
func NewS3LoaderWithClient(cfg S3Config, client ObjectGetter) (*S3Loader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &S3Loader{config: cfg, client: client}, nil
}

// URI returns the s3:// location of the document.
func (l *S3Loader) URI() string {
	return fmt.Sprintf("s3://%s/%s", l.config.Bucket, l.config.Key)
}

// Load fetches and parses the object.
func (l *S3Loader) Load(ctx context.Context, opts LoadOptions) (*Document, error) {
	format, err := opts.format(l.config.Key)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.config.Bucket),
		Key:    aws.String(l.config.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", l.URI(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, l.config.MaxObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.URI(), err)
	}
	if int64(len(data)) > l.config.MaxObjectBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", l.URI(), l.config.MaxObjectBytes)
	}

	grid, err := Parse(bytes.NewReader(data), format, opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.URI(), err)
	}
	return newDocument(l.URI(), format, grid), nil
}
