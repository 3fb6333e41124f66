package service

import (
	"auth-fabric/config"
	"auth-fabric/internal/util"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3Service : вложения документов pdf сервиса. Файлы клиент грузит сам по pre-signed URL,
// сервис только подписывает ссылки и удаляет объекты вместе с документом.
type S3Service struct {
	objects   *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewS3Service(ctx context.Context, cfg *config.S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("[S3Service] не задан s3Config.bucket")
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// MinIO поднимается пустым, в AWS бакет заводится заранее
	if cfg.Local {
		if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
			return nil, err
		}
	}

	return &S3Service{
		objects:   client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

func newS3Client(ctx context.Context, cfg *config.S3Config) (*s3.Client, error) {
	if !cfg.Local {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, util.LogError("[S3Service] ошибка загрузки AWS config", err)
		}
		return s3.NewFromConfig(awsCfg), nil
	}

	accessKey, secretKey := os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		accessKey, secretKey = "minioadmin", "minioadmin"
	}

	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
	}), nil
}

// ensureBucket : создаёт бакет, если HeadBucket ответил NotFound
func ensureBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return util.LogError("[S3Service] бакет недоступен", err)
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return util.LogError("[S3Service] ошибка создания бакета", err)
	}

	zap.L().Info("[S3Service] бакет создан", zap.String("bucket", bucket))
	return nil
}

func withExpiry(expire time.Duration) func(*s3.PresignOptions) {
	return func(opts *s3.PresignOptions) {
		opts.Expires = expire
	}
}

// GeneratePresignedGetURL : ссылка на скачивание вложения
func (s *S3Service) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, withExpiry(expire))
	if err != nil {
		return "", util.LogError("[S3Service] не удалось подписать GET "+key, err)
	}
	return signed.URL, nil
}

// GeneratePresignedPutURL : ссылка на загрузку вложения, выдаётся при создании документа
func (s *S3Service) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	signed, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, withExpiry(expire))
	if err != nil {
		return "", util.LogError("[S3Service] не удалось подписать PUT "+key, err)
	}
	return signed.URL, nil
}

func (s *S3Service) DeleteObject(ctx context.Context, key string) error {
	if _, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return util.LogError("[S3Service] не удалось удалить "+key, err)
	}
	return nil
}
