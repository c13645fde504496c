package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"serata/internal/models"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Client caches public event listings and scanner assignment lookups.
// Misses and failures always degrade to database reads.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: cfg.TTL}, nil
}

func eventsListKey(page, pageSize int) string {
	return fmt.Sprintf("events:list:%d:%d", page, pageSize)
}

func scannerKey(userID, eventID int64) string {
	return fmt.Sprintf("scanner:%d:%d", userID, eventID)
}

// GetEventsListRaw returns the cached JSON for an events page, avoiding a
// decode/encode round trip on the hot path.
func (c *Client) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := c.rdb.Get(ctx, eventsListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("events list not cached")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

func (c *Client) SetEventsList(ctx context.Context, page, pageSize int, response any) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, eventsListKey(page, pageSize), data, c.ttl).Err()
}

// InvalidateEventsList drops every cached events page after a write.
func (c *Client) InvalidateEventsList(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "events:list:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Client) GetScannerAssignment(ctx context.Context, userID, eventID int64) (*models.ScannerAssignment, error) {
	data, err := c.rdb.Get(ctx, scannerKey(userID, eventID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("assignment not cached")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var assignment models.ScannerAssignment
	if err := json.Unmarshal(data, &assignment); err != nil {
		return nil, fmt.Errorf("invalid assignment in cache: %w", err)
	}
	return &assignment, nil
}

func (c *Client) SetScannerAssignment(ctx context.Context, assignment *models.ScannerAssignment) error {
	data, err := json.Marshal(assignment)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, scannerKey(assignment.UserID, assignment.EventID), data, c.ttl).Err()
}

func (c *Client) InvalidateScannerAssignment(ctx context.Context, userID, eventID int64) error {
	return c.rdb.Del(ctx, scannerKey(userID, eventID)).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
