package store

import (
	"context"
	"fmt"
	"io"
	"log"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend     string
	RedisAddr   string
	RedisPrefix string
	DatabaseURL string
	SQLitePath  string
	DynamoTable string
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open connects the configured backend. The returned closer releases it.
func Open(ctx context.Context, opts Options) (Store, io.Closer, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), closerFunc(func() error { return nil }), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Printf("[Store] Connected to Redis at %s", opts.RedisAddr)
		return NewRedisStore(client, opts.RedisPrefix), client, nil

	case "postgres":
		db, err := ConnectPostgres(opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		ps, err := NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init postgres schema: %w", err)
		}
		log.Println("[Store] Connected to PostgreSQL")
		return ps, db, nil

	case "sqlite":
		ss, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Printf("[Store] Opened SQLite at %s", opts.SQLitePath)
		return ss, ss, nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		log.Printf("[Store] Using DynamoDB table %s", opts.DynamoTable)
		ds := NewDynamoStore(dynamodb.NewFromConfig(awsCfg), opts.DynamoTable)
		return ds, closerFunc(func() error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", opts.Backend)
}
