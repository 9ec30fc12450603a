package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/redis/go-redis/v9"
)

const (
	redisRecordPrefix = "igfeed:metafields:"
	redisTypeSuffix   = ":types"
)

// RedisMetafieldStore publishes records as two Redis hashes per tenant namespace:
// one holding values and one holding record types. Put replaces both inside MULTI/EXEC.
type RedisMetafieldStore struct {
	client redis.UniversalClient
}

// NewRedisMetafieldStore creates a store on a shared client
func NewRedisMetafieldStore(client redis.UniversalClient) *RedisMetafieldStore {
	return &RedisMetafieldStore{client: client}
}

// Ensure RedisMetafieldStore implements MetafieldStore
var _ integration.MetafieldStore = (*RedisMetafieldStore)(nil)

// Put replaces the namespace's records atomically
func (s *RedisMetafieldStore) Put(ctx context.Context, tenantKey, namespace string, records []integration.PublishRecord) error {
	if err := integration.ValidateRecords(records); err != nil {
		return err
	}

	valuesKey, typesKey := s.keys(tenantKey, namespace)
	values := make(map[string]any, len(records))
	types := make(map[string]any, len(records))
	for _, r := range records {
		values[r.Key] = r.Value
		types[r.Key] = string(r.Type)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, valuesKey, typesKey)
		if len(records) > 0 {
			pipe.HSet(ctx, valuesKey, values)
			pipe.HSet(ctx, typesKey, types)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPublishFailed, err)
	}
	return nil
}

// Get returns the namespace's records ordered by key
func (s *RedisMetafieldStore) Get(ctx context.Context, tenantKey, namespace string) ([]integration.PublishRecord, error) {
	valuesKey, typesKey := s.keys(tenantKey, namespace)

	var valuesCmd, typesCmd *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		valuesCmd = pipe.HGetAll(ctx, valuesKey)
		typesCmd = pipe.HGetAll(ctx, typesKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read published records: %w", err)
	}

	values := valuesCmd.Val()
	types := typesCmd.Val()
	records := make([]integration.PublishRecord, 0, len(values))
	for key, value := range values {
		records = append(records, integration.PublishRecord{
			Key:   key,
			Type:  integration.RecordType(types[key]),
			Value: value,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

// Delete removes the namespace
func (s *RedisMetafieldStore) Delete(ctx context.Context, tenantKey, namespace string) error {
	valuesKey, typesKey := s.keys(tenantKey, namespace)
	if err := s.client.Del(ctx, valuesKey, typesKey).Err(); err != nil {
		return fmt.Errorf("failed to delete published records: %w", err)
	}
	return nil
}

func (s *RedisMetafieldStore) keys(tenantKey, namespace string) (string, string) {
	base := redisRecordPrefix + tenantKey + ":" + namespace
	return base, base + redisTypeSuffix
}
