package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/shoprec/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// delBatch bounds the number of DEL commands pipelined in one round trip.
const delBatch = 100

// Del deletes keys. No keys is a no-op. Each key gets its own DEL so that
// keys hashing to different cluster slots can be removed in one call.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += delBatch {
		end := min(start+delBatch, len(keys))
		cmds := make(rueidis.Commands, 0, end-start)
		for _, k := range keys[start:end] {
			cmds = append(cmds, s.b().Del().Key(k).Build())
		}
		for _, res := range s.client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				return &db.Error{Op: db.OpDel, Err: err}
			}
		}
	}
	return nil
}

// Scan iterates keys matching a pattern on every node, so a cluster is
// covered shard by shard. Keys seen on more than one node are reported once.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	nodes := s.client.Nodes()
	addrs := make([]string, 0, len(nodes))
	for addr := range nodes {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	var keys []string
	seen := make(map[string]struct{})
	for _, addr := range addrs {
		nodeKeys, err := scanNode(ctx, nodes[addr], pattern)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: fmt.Errorf("%s: %w", addr, err)}
		}
		for _, k := range nodeKeys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func scanNode(ctx context.Context, node rueidis.Client, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := node.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := node.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by Scan with the node address
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
