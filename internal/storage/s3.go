package storage

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const basePath = "proposals/"

// Uploader guarda anexos de propostas e devolve a chave do objeto.
type Uploader interface {
	UploadFile(ctx context.Context, data []byte, filename string) (string, error)
}

type s3Uploader struct {
	bucket string
	client *s3.Client
}

func NewS3Uploader(ctx context.Context, region, bucket string) (Uploader, error) {
	if bucket == "" {
		return nil, errors.New("bucket S3 não configurado")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &s3Uploader{
		bucket: bucket,
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (s *s3Uploader) UploadFile(ctx context.Context, data []byte, filename string) (string, error) {
	if filename == "" {
		return "", errors.New("nome do arquivo vazio")
	}

	key := basePath + uuid.NewString() + "-" + filepath.Base(filename)
	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: &mimeType,
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return key, nil
}
