package s3store

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/config"
	"github.com/sunr3d/project-backup/internal/interfaces/infra"
)

var _ infra.RemoteStorage = (*s3Storage)(nil)

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

type multipart struct {
	key      string
	parts    []s3types.CompletedPart
	received uint64
}

type s3Storage struct {
	api    objectAPI
	bucket string
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*multipart
}

func New(ctx context.Context, log *zap.Logger, cfg *config.Config) (infra.RemoteStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 5 * time.Minute}),
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3ForcePathStyle
		if endpoint := strings.TrimSpace(cfg.S3Endpoint); endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newWithAPI(log, client, cfg.S3Bucket), nil
}

func newWithAPI(log *zap.Logger, api objectAPI, bucket string) *s3Storage {
	return &s3Storage{
		api:      api,
		bucket:   bucket,
		logger:   log,
		sessions: make(map[string]*multipart),
	}
}

func (s *s3Storage) UploadWhole(ctx context.Context, content []byte, path string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(path)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

func (s *s3Storage) StartSession(ctx context.Context, path string, chunk []byte) (string, error) {
	key := objectKey(path)

	out, err := s.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionStart, err)
	}
	uploadID := aws.ToString(out.UploadId)

	mp := &multipart{key: key}
	s.mu.Lock()
	s.sessions[uploadID] = mp
	s.mu.Unlock()

	// No session id reaches the caller on failure, so the upload is aborted here.
	if err := s.uploadPart(ctx, uploadID, mp, chunk); err != nil {
		if cancelErr := s.CancelSession(ctx, uploadID); cancelErr != nil {
			s.logger.Warn("не удалось отменить multipart-загрузку",
				zap.String("session_id", uploadID),
				zap.Error(cancelErr),
			)
		}
		return "", fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	s.logger.Debug("multipart-загрузка открыта",
		zap.String("session_id", uploadID),
		zap.String("key", key),
	)
	return uploadID, nil
}

func (s *s3Storage) AppendToSession(ctx context.Context, sessionID string, offset uint64, chunk []byte) error {
	mp, err := s.lookup(sessionID, offset)
	if err != nil {
		return err
	}
	if err := s.uploadPart(ctx, sessionID, mp, chunk); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionAppend, err)
	}
	return nil
}

func (s *s3Storage) FinishSession(ctx context.Context, sessionID string, offset uint64, chunk []byte, path string) error {
	mp, err := s.lookup(sessionID, offset)
	if err != nil {
		return err
	}
	if key := objectKey(path); key != mp.key {
		return fmt.Errorf("%w: %s != %s", ErrTargetMismatch, key, mp.key)
	}

	if len(chunk) > 0 {
		if err := s.uploadPart(ctx, sessionID, mp, chunk); err != nil {
			return fmt.Errorf("%w: %v", ErrSessionFinish, err)
		}
	}

	_, err = s.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(mp.key),
		UploadId:        aws.String(sessionID),
		MultipartUpload: &s3types.CompletedMultipartUpload{Parts: mp.parts},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionFinish, err)
	}

	s.forget(sessionID)
	return nil
}

func (s *s3Storage) CancelSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	mp, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	_, err := s.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(mp.key),
		UploadId: aws.String(sessionID),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionCancel, err)
	}

	s.forget(sessionID)
	return nil
}

func (s *s3Storage) lookup(sessionID string, offset uint64) (*multipart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mp, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if mp.received != offset {
		return nil, fmt.Errorf("%w: ожидалось %d, получено %d", ErrOffsetMismatch, mp.received, offset)
	}
	return mp, nil
}

func (s *s3Storage) uploadPart(ctx context.Context, uploadID string, mp *multipart, chunk []byte) error {
	partNumber := int32(len(mp.parts) + 1)

	out, err := s.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(mp.key),
		UploadId:      aws.String(uploadID),
		PartNumber:    aws.Int32(partNumber),
		Body:          bytes.NewReader(chunk),
		ContentLength: aws.Int64(int64(len(chunk))),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	mp.parts = append(mp.parts, s3types.CompletedPart{
		ETag:       out.ETag,
		PartNumber: aws.Int32(partNumber),
	})
	mp.received += uint64(len(chunk))
	s.mu.Unlock()

	return nil
}

func (s *s3Storage) forget(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}
