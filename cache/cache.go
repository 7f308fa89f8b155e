package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache keys shared by the repositories.
const (
	PatientsKey     = "patients_cache"
	AppointmentsKey = "appointments_cache"
)

func PatientKey(id uint) string {
	return fmt.Sprintf("patient_cache:%d", id)
}

func AppointmentKey(id uint) string {
	return fmt.Sprintf("appointment_cache:%d", id)
}

func PatientAppointmentsKey(patientID uint) string {
	return fmt.Sprintf("patient_appointments_cache:%d", patientID)
}

var errNotInitialized = errors.New("Redis client is not initialized")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps client. Entries written through SetJSON expire after ttl.
func NewCache(client *redis.Client, ttl time.Duration) (*Cache, error) {
	if client == nil {
		return nil, errNotInitialized
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.client == nil {
		return errNotInitialized
	}
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns "" with a nil error when key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", errNotInitialized
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *Cache) DeleteBatch(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return errNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetJSON decodes the entry at key into dst. found is false on a miss or when
// the stored payload no longer decodes.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) (found bool, err error) {
	raw, err := c.Get(ctx, key)
	if err != nil || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON stores value encoded as JSON with the cache's default expiry.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return c.Set(ctx, key, payload, c.ttl)
}
