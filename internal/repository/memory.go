package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"itemhub/internal/model"
)

// memTable is a mutex guarded table with auto-increment ids and optional
// unique indexes. Rows are stored and returned by value.
type memTable[T any] struct {
	mu       sync.RWMutex
	seq      uint
	rows     map[uint]T
	unique   []func(*T) string
	index    []map[string]uint
	notFound error
	conflict error
}

func newMemTable[T any](notFound, conflict error, unique ...func(*T) string) *memTable[T] {
	t := &memTable[T]{
		rows:     make(map[uint]T),
		unique:   unique,
		notFound: notFound,
		conflict: conflict,
	}
	for range unique {
		t.index = append(t.index, make(map[string]uint))
	}
	return t
}

func (t *memTable[T]) get(id uint) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, t.notFound
	}
	return row, nil
}

// lookup finds a row through unique index i.
func (t *memTable[T]) lookup(i int, key string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id, ok := t.index[i][key]; ok {
		return t.rows[id], nil
	}
	var zero T
	return zero, t.notFound
}

func (t *memTable[T]) list(offset, limit int) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]uint, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []T{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, t.rows[ids[i]])
	}
	return out
}

// insert claims the unique keys, assigns the next id and stores the row in
// one critical section.
func (t *memTable[T]) insert(row *T, init func(*T, uint)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, key := range t.unique {
		if _, taken := t.index[i][key(row)]; taken {
			return t.conflict
		}
	}
	t.seq++
	init(row, t.seq)
	for i, key := range t.unique {
		t.index[i][key(row)] = t.seq
	}
	t.rows[t.seq] = *row
	return nil
}

func (t *memTable[T]) update(id uint, mutate func(*T)) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	cur, ok := t.rows[id]
	if !ok {
		return zero, t.notFound
	}
	next := cur
	mutate(&next)
	for i, key := range t.unique {
		if owner, taken := t.index[i][key(&next)]; taken && owner != id {
			return zero, t.conflict
		}
	}
	for i, key := range t.unique {
		delete(t.index[i], key(&cur))
		t.index[i][key(&next)] = id
	}
	t.rows[id] = next
	return next, nil
}

func (t *memTable[T]) remove(id uint) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, t.notFound
	}
	for i, key := range t.unique {
		delete(t.index[i], key(&row))
	}
	delete(t.rows, id)
	return row, nil
}

type memoryItemRepository struct {
	table *memTable[model.Item]
}

// NewMemoryItemRepository returns a process-local item store. State is not
// shared between server processes.
func NewMemoryItemRepository() ItemRepository {
	return &memoryItemRepository{table: newMemTable[model.Item](errItemNotFound, nil)}
}

func (r *memoryItemRepository) FindByID(_ context.Context, id uint) (*model.Item, error) {
	item, err := r.table.get(id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *memoryItemRepository) List(_ context.Context, offset, limit int) ([]model.Item, error) {
	return r.table.list(offset, limit), nil
}

func (r *memoryItemRepository) Create(_ context.Context, item *model.Item) error {
	return r.table.insert(item, func(it *model.Item, id uint) {
		it.ID = id
		it.CreatedAt = time.Now().UTC()
		it.UpdatedAt = nil
	})
}

func (r *memoryItemRepository) Update(_ context.Context, id uint, patch model.ItemUpdate) (*model.Item, error) {
	item, err := r.table.update(id, func(it *model.Item) {
		patch.Apply(it)
		ts := model.Stamp(it.CreatedAt, it.UpdatedAt, time.Now().UTC())
		it.UpdatedAt = &ts
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *memoryItemRepository) Delete(_ context.Context, id uint) (*model.Item, error) {
	item, err := r.table.remove(id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const (
	usernameIndex = iota
	emailIndex
)

type memoryUserRepository struct {
	table *memTable[model.User]
}

// NewMemoryUserRepository returns a process-local user store with unique
// username and email indexes.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{table: newMemTable(errUserNotFound, errUserDuplicate,
		func(u *model.User) string { return u.Username },
		func(u *model.User) string { return u.Email },
	)}
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	return userOrErr(r.table.get(id))
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return userOrErr(r.table.lookup(usernameIndex, username))
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return userOrErr(r.table.lookup(emailIndex, email))
}

func (r *memoryUserRepository) List(_ context.Context, offset, limit int) ([]model.User, error) {
	return r.table.list(offset, limit), nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	return r.table.insert(user, func(u *model.User, id uint) {
		u.ID = id
		u.CreatedAt = time.Now().UTC()
		u.UpdatedAt = nil
	})
}

func (r *memoryUserRepository) Update(_ context.Context, id uint, patch model.UserPatch) (*model.User, error) {
	return userOrErr(r.table.update(id, func(u *model.User) {
		patch.Apply(u)
		ts := model.Stamp(u.CreatedAt, u.UpdatedAt, time.Now().UTC())
		u.UpdatedAt = &ts
	}))
}

func (r *memoryUserRepository) Delete(_ context.Context, id uint) (*model.User, error) {
	return userOrErr(r.table.remove(id))
}

func userOrErr(u model.User, err error) (*model.User, error) {
	if err != nil {
		return nil, err
	}
	return &u, nil
}
