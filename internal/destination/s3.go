package destination

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
)

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
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

const (
	DefaultPutExpiry = 15 * time.Minute
	DefaultGetExpiry = 7 * 24 * time.Hour
)

// S3Config configures presigning. Empty credentials fall back to the default
// AWS credential chain.
type S3Config struct {
	Region       string        `json:"region"`
	Endpoint     string        `json:"endpoint"`
	AccessKey    string        `json:"access_key"`
	SecretKey    string        `json:"secret_key"`
	UsePathStyle bool          `json:"use_path_style"`
	PutExpiry    time.Duration `json:"-"`
	GetExpiry    time.Duration `json:"-"`
}

// S3Presigner signs object URLs. The presign client is built on first use.
type S3Presigner struct {
	cfg S3Config

	once   sync.Once
	client *s3.PresignClient
	err    error
}

func NewS3Presigner(cfg S3Config) *S3Presigner {
	if cfg.PutExpiry <= 0 {
		cfg.PutExpiry = DefaultPutExpiry
	}
	if cfg.GetExpiry <= 0 {
		cfg.GetExpiry = DefaultGetExpiry
	}
	return &S3Presigner{cfg: cfg}
}

func (p *S3Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.once.Do(func() {
		opts := []func(*config.LoadOptions) error{}
		if p.cfg.Region != "" {
			opts = append(opts, config.WithRegion(p.cfg.Region))
		}
		if p.cfg.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(p.cfg.AccessKey, p.cfg.SecretKey, "")))
		}

		cfg, err := loadDefaultAWSConfig(ctx, opts...)
		if err != nil {
			p.err = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
			if p.cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(p.cfg.Endpoint)
			}
			o.UsePathStyle = p.cfg.UsePathStyle
		})
		p.client = newS3PresignClient(client)
	})
	return p.client, p.err
}

// StorageKey places a new object under prefix, partitioned by date.
func StorageKey(prefix string) string {
	d := timeNow().UTC()
	return path.Join(prefix, fmt.Sprintf("%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New()))
}

// Target presigns a PUT for the upload and a GET that becomes the location.
func (p *S3Presigner) Target(ctx context.Context, d Destination, b Blob) (netx.Target, error) {
	pc, err := p.presignClient(ctx)
	if err != nil {
		return netx.Target{}, err
	}

	bucket := d.Bucket
	key := StorageKey(d.Prefix)

	put, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.cfg.PutExpiry))
	if err != nil {
		return netx.Target{}, fmt.Errorf("presign put %s/%s: %w", bucket, key, err)
	}

	get, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(p.cfg.GetExpiry))
	if err != nil {
		return netx.Target{}, fmt.Errorf("presign get %s/%s: %w", bucket, key, err)
	}

	return netx.Target{
		Protocol: netx.ProtocolPresigned,
		URL:      put.URL,
		Location: get.URL,
		FileName: b.FileName,
	}, nil
}
