package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Хранилище скриншотов проектов. Сами картинки приходят от внешнего
// превью-сервиса; здесь они только складываются под контент-адресуемым
// ключом и отдаются по публичному URL.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	log    *log.Logger
	bucket string
	public string // базовый URL для выдачи наружу
}

func New(cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	public := fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	return &Storage{cl: cl, log: logger, bucket: cfg.Bucket, public: public}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		s.log.Printf("ping failed: %v", err)
	}
	return err
}

// PutImage кладёт картинку под ключ "screens/<sha256>.<ext>" и
// возвращает ключ. Повторная загрузка того же контента — перезапись
// того же объекта, дубликатов не копится.
func (s *Storage) PutImage(ctx context.Context, data []byte, mime string) (string, error) {
	sum := sha256.Sum256(data)
	key := fmt.Sprintf("screens/%x%s", sum, extFor(mime))

	_, err := s.cl.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		s.log.Printf("put %q failed: %v", key, err)
		return "", err
	}
	s.log.Printf("put %q ok (%d bytes)", key, len(data))
	return key, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.cl.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		s.log.Printf("delete %q failed: %v", key, err)
	}
	return err
}

// URL — публичный адрес объекта для выдачи в API.
func (s *Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.public + "/" + key
}

func extFor(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return ".png"
	case strings.Contains(mime, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
