package redisx

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis здесь обслуживает только блэклист JWT (ревокация переживает
// рестарт процесса). Кэш выборок — процессный, см. infra/cache/memory.
type Store struct {
	rdb    *redis.Client
	logger *log.Logger
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

func New(cfg Config, logger *log.Logger) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Store{rdb: rdb, logger: logger}
}

func (s *Store) Ping(ctx context.Context) error {
	err := s.rdb.Ping(ctx).Err()
	if err != nil {
		s.logger.Printf("PING failed: %v", err)
	} else {
		s.logger.Println("PING ok")
	}
	return err
}

func (s *Store) Close() {
	if s.rdb == nil {
		s.logger.Println("nothing to close")
		return
	}
	if err := s.rdb.Close(); err != nil {
		s.logger.Printf("error while closing: %v", err)
		return
	}
	s.logger.Println("closed")
}

// SetNX устанавливает значение только если ключ ещё не существует.
func (s *Store) SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error) {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	ok, err := s.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		s.logger.Printf("SETNX %q failed: %v", key, err)
	} else if ok {
		s.logger.Printf("SETNX %q ok (ttl=%s)", key, ttl)
	} else {
		s.logger.Printf("SETNX %q skipped (already exists)", key)
	}
	return ok, err
}

// Exists проверяет наличие ключа.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		s.logger.Printf("EXISTS %q failed: %v", key, err)
		return false, err
	}
	return n == 1, nil
}
