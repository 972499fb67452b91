package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"itemhub/internal/model"
)

// Key layout under a prefix P (a hash tag keeps them in one cluster slot):
//
//	P:seq         INCR counter for ids
//	P:data        hash id -> JSON record
//	P:order       sorted set of ids scored by id
//	P:idx:<name>  hash unique value -> id
const defaultRedisPrefix = "{itemhub}"

// maxCASAttempts bounds optimistic retries when concurrent writers race on
// the same record.
const maxCASAttempts = 16

var createScript = redis.NewScript(`
for i = 4, #KEYS do
  if redis.call('HEXISTS', KEYS[i], ARGV[i-2]) == 1 then
    return -1
  end
end
local id = redis.call('INCR', KEYS[1])
redis.call('HSET', KEYS[2], id, ARGV[1])
redis.call('ZADD', KEYS[3], id, id)
for i = 4, #KEYS do
  redis.call('HSET', KEYS[i], ARGV[i-2], id)
end
return id
`)

// updateScript swaps the record only if it still equals the expected JSON.
// ARGV: id, expected, replacement, then old/new value pairs per index key.
var updateScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then
  return -2
end
if cur ~= ARGV[2] then
  return -3
end
for i = 2, #KEYS do
  local old, new = ARGV[2*i], ARGV[2*i+1]
  if old ~= new then
    local owner = redis.call('HGET', KEYS[i], new)
    if owner and owner ~= ARGV[1] then
      return -1
    end
  end
end
for i = 2, #KEYS do
  local old, new = ARGV[2*i], ARGV[2*i+1]
  if old ~= new then
    redis.call('HDEL', KEYS[i], old)
    redis.call('HSET', KEYS[i], new, ARGV[1])
  end
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
return 1
`)

// deleteScript removes the record and releases its unique values, read from
// the stored JSON. ARGV: id, then the JSON field name per index key.
var deleteScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then
  return false
end
local rec = cjson.decode(cur)
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('ZREM', KEYS[2], ARGV[1])
for i = 3, #KEYS do
  redis.call('HDEL', KEYS[i], rec[ARGV[i-1]])
end
return cur
`)

type uniqueField[T any] struct {
	name  string
	value func(*T) string
}

type redisTable[T any] struct {
	rdb      redis.UniversalClient
	prefix   string
	unique   []uniqueField[T]
	setID    func(*T, uint)
	encode   func(*T) ([]byte, error)
	decode   func([]byte) (T, error)
	notFound error
	conflict error
}

func (t *redisTable[T]) key(parts ...string) string {
	k := t.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (t *redisTable[T]) indexKeys() []string {
	keys := make([]string, 0, len(t.unique))
	for _, u := range t.unique {
		keys = append(keys, t.key("idx", u.name))
	}
	return keys
}

func (t *redisTable[T]) load(raw string, id uint) (T, error) {
	row, err := t.decode([]byte(raw))
	if err != nil {
		return row, fmt.Errorf("decode %s/%d: %w", t.prefix, id, err)
	}
	t.setID(&row, id)
	return row, nil
}

func (t *redisTable[T]) store(row T) (string, error) {
	t.setID(&row, 0)
	b, err := t.encode(&row)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (t *redisTable[T]) get(ctx context.Context, id uint) (T, error) {
	var zero T
	raw, err := t.rdb.HGet(ctx, t.key("data"), strconv.FormatUint(uint64(id), 10)).Result()
	if stderrors.Is(err, redis.Nil) {
		return zero, t.notFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis get: %w", err)
	}
	return t.load(raw, id)
}

func (t *redisTable[T]) lookup(ctx context.Context, index int, value string) (T, error) {
	var zero T
	raw, err := t.rdb.HGet(ctx, t.key("idx", t.unique[index].name), value).Result()
	if stderrors.Is(err, redis.Nil) {
		return zero, t.notFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis lookup: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return zero, fmt.Errorf("redis index value %q: %w", raw, err)
	}
	return t.get(ctx, uint(id))
}

func (t *redisTable[T]) list(ctx context.Context, offset, limit int) ([]T, error) {
	out := []T{}
	if limit <= 0 {
		return out, nil
	}
	ids, err := t.rdb.ZRange(ctx, t.key("order"), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := t.rdb.HMGet(ctx, t.key("data"), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and HMGET
			continue
		}
		id, err := strconv.ParseUint(ids[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis order member %q: %w", ids[i], err)
		}
		row, err := t.load(raw, uint(id))
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (t *redisTable[T]) insert(ctx context.Context, row *T) error {
	raw, err := t.store(*row)
	if err != nil {
		return err
	}
	keys := append([]string{t.key("seq"), t.key("data"), t.key("order")}, t.indexKeys()...)
	args := []interface{}{raw}
	for _, u := range t.unique {
		args = append(args, u.value(row))
	}
	id, err := createScript.Run(ctx, t.rdb, keys, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis create: %w", err)
	}
	if id < 0 {
		return t.conflict
	}
	t.setID(row, uint(id))
	return nil
}

func (t *redisTable[T]) update(ctx context.Context, id uint, mutate func(*T)) (T, error) {
	var zero T
	field := strconv.FormatUint(uint64(id), 10)
	keys := append([]string{t.key("data")}, t.indexKeys()...)

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		raw, err := t.rdb.HGet(ctx, t.key("data"), field).Result()
		if stderrors.Is(err, redis.Nil) {
			return zero, t.notFound
		}
		if err != nil {
			return zero, fmt.Errorf("redis update: %w", err)
		}
		cur, err := t.load(raw, id)
		if err != nil {
			return zero, err
		}
		next := cur
		mutate(&next)
		replacement, err := t.store(next)
		if err != nil {
			return zero, err
		}

		args := []interface{}{field, raw, replacement}
		for _, u := range t.unique {
			args = append(args, u.value(&cur), u.value(&next))
		}
		res, err := updateScript.Run(ctx, t.rdb, keys, args...).Int64()
		if err != nil {
			return zero, fmt.Errorf("redis update: %w", err)
		}
		switch res {
		case 1:
			return next, nil
		case -1:
			return zero, t.conflict
		case -2:
			return zero, t.notFound
		}
	}
	return zero, fmt.Errorf("redis update %s/%d: too much contention", t.prefix, id)
}

func (t *redisTable[T]) remove(ctx context.Context, id uint) (T, error) {
	var zero T
	keys := append([]string{t.key("data"), t.key("order")}, t.indexKeys()...)
	args := []interface{}{strconv.FormatUint(uint64(id), 10)}
	for _, u := range t.unique {
		args = append(args, u.name)
	}
	raw, err := deleteScript.Run(ctx, t.rdb, keys, args...).Text()
	if stderrors.Is(err, redis.Nil) {
		return zero, t.notFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis delete: %w", err)
	}
	return t.load(raw, id)
}

func jsonEncode[T any](v *T) ([]byte, error) { return json.Marshal(v) }

func jsonDecode[T any](b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

type redisItemRepository struct {
	table *redisTable[model.Item]
}

// NewRedisItemRepository stores items in redis under prefix (defaults to
// "{itemhub}"), so every server process sees the same data.
func NewRedisItemRepository(rdb redis.UniversalClient, prefix string) ItemRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisItemRepository{table: &redisTable[model.Item]{
		rdb:      rdb,
		prefix:   prefix + ":items",
		setID:    func(it *model.Item, id uint) { it.ID = id },
		encode:   jsonEncode[model.Item],
		decode:   jsonDecode[model.Item],
		notFound: errItemNotFound,
	}}
}

func (r *redisItemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	item, err := r.table.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisItemRepository) List(ctx context.Context, offset, limit int) ([]model.Item, error) {
	return r.table.list(ctx, offset, limit)
}

func (r *redisItemRepository) Create(ctx context.Context, item *model.Item) error {
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = nil
	return r.table.insert(ctx, item)
}

func (r *redisItemRepository) Update(ctx context.Context, id uint, patch model.ItemUpdate) (*model.Item, error) {
	item, err := r.table.update(ctx, id, func(it *model.Item) {
		patch.Apply(it)
		ts := model.Stamp(it.CreatedAt, it.UpdatedAt, time.Now().UTC())
		it.UpdatedAt = &ts
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisItemRepository) Delete(ctx context.Context, id uint) (*model.Item, error) {
	item, err := r.table.remove(ctx, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// userRecord keeps the password hash, which model.User hides from JSON.
type userRecord struct {
	model.User
	HashedPassword string `json:"hashed_password"`
}

type redisUserRepository struct {
	table *redisTable[model.User]
}

// NewRedisUserRepository stores users in redis with atomic username and
// email uniqueness.
func NewRedisUserRepository(rdb redis.UniversalClient, prefix string) UserRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisUserRepository{table: &redisTable[model.User]{
		rdb:    rdb,
		prefix: prefix + ":users",
		unique: []uniqueField[model.User]{
			{name: "username", value: func(u *model.User) string { return u.Username }},
			{name: "email", value: func(u *model.User) string { return u.Email }},
		},
		setID: func(u *model.User, id uint) { u.ID = id },
		encode: func(u *model.User) ([]byte, error) {
			return json.Marshal(userRecord{User: *u, HashedPassword: u.HashedPassword})
		},
		decode: func(b []byte) (model.User, error) {
			var rec userRecord
			if err := json.Unmarshal(b, &rec); err != nil {
				return model.User{}, err
			}
			u := rec.User
			u.HashedPassword = rec.HashedPassword
			return u, nil
		},
		notFound: errUserNotFound,
		conflict: errUserDuplicate,
	}}
}

func (r *redisUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return userOrErr(r.table.get(ctx, id))
}

func (r *redisUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return userOrErr(r.table.lookup(ctx, usernameIndex, username))
}

func (r *redisUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return userOrErr(r.table.lookup(ctx, emailIndex, email))
}

func (r *redisUserRepository) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	return r.table.list(ctx, offset, limit)
}

func (r *redisUserRepository) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = nil
	return r.table.insert(ctx, user)
}

func (r *redisUserRepository) Update(ctx context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	return userOrErr(r.table.update(ctx, id, func(u *model.User) {
		patch.Apply(u)
		ts := model.Stamp(u.CreatedAt, u.UpdatedAt, time.Now().UTC())
		u.UpdatedAt = &ts
	}))
}

func (r *redisUserRepository) Delete(ctx context.Context, id uint) (*model.User, error) {
	return userOrErr(r.table.remove(ctx, id))
}
