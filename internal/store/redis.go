package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chancia/quizlive/internal/domain"
)

// incrIfPresent increments only when the hash field exists, keeping the
// "entry exists iff member is registered" invariant atomic on the server.
var incrIfPresent = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
end
return -1
`)

// zeroAll rewrites every field in one server-side step, so a member
// initialized by another gateway process mid-reset cannot be missed.
var zeroAll = redis.NewScript(`
local fields = redis.call('HKEYS', KEYS[1])
for i = 1, #fields do
  redis.call('HSET', KEYS[1], fields[i], 0)
end
return #fields
`)

// RedisScoreBoard backs core.ScoreBoard with one hash per room
// (room:<key>:scores), for deployments where several gateway processes
// share score state. Every call is bounded by opTimeout so a slow Redis
// cannot hold a room lock hostage.
type RedisScoreBoard struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewRedisScoreBoard(client *redis.Client, opTimeout time.Duration) *RedisScoreBoard {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &RedisScoreBoard{client: client, opTimeout: opTimeout}
}

func (b *RedisScoreBoard) Initialize(ctx context.Context, room domain.RoomKey, id domain.MemberID) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if err := b.client.HSetNX(ctx, scoresKey(room), string(id), 0).Err(); err != nil {
		return fmt.Errorf("%w: score init: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func (b *RedisScoreBoard) Increment(ctx context.Context, room domain.RoomKey, id domain.MemberID) (int, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	v, err := incrIfPresent.Run(ctx, b.client, []string{scoresKey(room)}, string(id)).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: score increment: %v", domain.ErrCollaboratorUnavailable, err)
	}
	if v < 0 {
		return 0, domain.ErrUnknownMember
	}
	return int(v), nil
}

func (b *RedisScoreBoard) Remove(ctx context.Context, room domain.RoomKey, id domain.MemberID) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if err := b.client.HDel(ctx, scoresKey(room), string(id)).Err(); err != nil {
		return fmt.Errorf("%w: score remove: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func (b *RedisScoreBoard) Snapshot(ctx context.Context, room domain.RoomKey) (map[domain.MemberID]int, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	raw, err := b.client.HGetAll(ctx, scoresKey(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: score snapshot: %v", domain.ErrCollaboratorUnavailable, err)
	}
	out := make(map[domain.MemberID]int, len(raw))
	for id, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[domain.MemberID(id)] = n
	}
	return out, nil
}

func (b *RedisScoreBoard) ResetAll(ctx context.Context, room domain.RoomKey) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if err := zeroAll.Run(ctx, b.client, []string{scoresKey(room)}).Err(); err != nil {
		return fmt.Errorf("%w: score reset: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func (b *RedisScoreBoard) DropRoom(ctx context.Context, room domain.RoomKey) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if err := b.client.Del(ctx, scoresKey(room)).Err(); err != nil {
		return fmt.Errorf("%w: score drop: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func (b *RedisScoreBoard) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.opTimeout)
}

func scoresKey(room domain.RoomKey) string {
	return "room:" + string(room) + ":scores"
}
