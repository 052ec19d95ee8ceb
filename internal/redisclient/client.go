package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"storefront/internal/kv"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/add_email.lua
var addEmailScript string

const (
	keyPrefix = "storefront:"
	opTimeout = 3 * time.Second
)

// Client is a Redis-backed kv.Store. Keys are namespaced under keyPrefix.
type Client struct {
	rdb *redis.Client
}

var _ kv.Store = (*Client)(nil)

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func namespaced(key string) string {
	return keyPrefix + key
}

// Get returns the value stored at key, or kv.ErrNotFound
func (c *Client) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := c.rdb.Get(ctx, namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

// Set stores value at key without expiry
func (c *Client) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, namespaced(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *Client) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.rdb.Del(ctx, namespaced(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// EmailSet is a deduplicated, capture-ordered set of newsletter emails
type EmailSet struct {
	rdb     *redis.Client
	setKey  string
	listKey string
	script  *redis.Script
}

// NewEmailSet creates an email set stored under name
func NewEmailSet(c *Client, name string) *EmailSet {
	return &EmailSet{
		rdb:     c.rdb,
		setKey:  namespaced(name + ":set"),
		listKey: namespaced(name + ":list"),
		script:  redis.NewScript(addEmailScript),
	}
}

// Add atomically records email. Returns true if it was not captured before.
func (e *EmailSet) Add(ctx context.Context, email string) (bool, error) {
	result, err := e.script.Run(ctx, e.rdb, []string{e.setKey, e.listKey}, email).Result()
	if err != nil {
		return false, fmt.Errorf("add email script failed: %w", err)
	}

	added, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	return added == 1, nil
}

// List returns captured emails in capture order
func (e *EmailSet) List(ctx context.Context) ([]string, error) {
	return e.rdb.LRange(ctx, e.listKey, 0, -1).Result()
}
