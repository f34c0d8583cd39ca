package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mloc-go/internal/config"
)

// S3Source downloads database images from S3. References take the form
// s3://bucket/key.
type S3Source struct {
	downloader *manager.Downloader
}

// NewS3Source builds an S3 client from the source config. Static
// credentials from the config take precedence; otherwise the ambient AWS
// credential chain applies.
func NewS3Source(ctx context.Context, cfg config.SourceConfig) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Source{downloader: manager.NewDownloader(client)}, nil
}

// Fetch downloads the object named by ref in full.
func (s *S3Source) Fetch(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, ok := parseS3Ref(ref)
	if !ok {
		return nil, fmt.Errorf("malformed s3 reference: %s", ref)
	}

	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("downloading s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}
