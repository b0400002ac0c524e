package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/forumdb/forumdb/internal/config"
	"github.com/forumdb/forumdb/internal/console"
	"github.com/forumdb/forumdb/internal/database"
	"github.com/forumdb/forumdb/internal/idalloc"
	"github.com/forumdb/forumdb/internal/store"
	"github.com/forumdb/forumdb/pkg/logger"
)

const connectAttempts = 3

// connectStore opens the database named in cfg. Tests replace it.
var connectStore = func(ctx context.Context, cfg *config.Config, uri string) (store.Store, func(), error) {
	client, err := database.ConnectWithRetry(ctx, uri, cfg.MongoDB.Timeout, connectAttempts)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warnf("mongo disconnect: %v", err)
		}
	}
	return store.NewMongo(client.Database(cfg.MongoDB.Database)), closeFn, nil
}

// mongoURI resolves the connection string, asking for the port when neither
// MONGODB_URI nor MONGODB_PORT is set.
func mongoURI(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if cfg.MongoDB.URI != "" {
		return cfg.MongoDB.URI, nil
	}
	input := cfg.MongoDB.Port
	if input == "" {
		var err error
		input, err = console.New(cmd.InOrStdin(), cmd.OutOrStdout()).Ask("Enter the MongoDB port number: ")
		if err != nil {
			return "", fmt.Errorf("read port: %w", err)
		}
	}
	port, err := database.ParsePort(input)
	if err != nil {
		return "", err
	}
	return cfg.MongoURI(port), nil
}

// openStore connects to the store. The returned func must be called to
// release the connection.
func openStore(cmd *cobra.Command, cfg *config.Config) (store.Store, func(), error) {
	uri, err := mongoURI(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	st, closeFn, err := connectStore(cmd.Context(), cfg, uri)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
	return st, closeFn, nil
}

// newAllocator shares ids through Redis when REDIS_HOST is set, so several
// authoring sessions can write to one store.
func newAllocator(ctx context.Context, cfg *config.Config) (idalloc.Allocator, func(), error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return idalloc.NewMemory(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	logger.Infof("allocating ids through Redis at %s", addr)
	return idalloc.NewRedis(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
}
