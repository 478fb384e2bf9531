// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"
	"sync"
	"time"

	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/logger"
	"github.com/featurebasedb/indexedlist/slots"
	"github.com/featurebasedb/indexedlist/stats"
)

// ManagerOption is a functional option type for Manager.
type ManagerOption[K comparable, V any] func(m *Manager[K, V]) error

// OptManagerValues seeds the store with values, in slot order.
func OptManagerValues[K comparable, V any](values []V) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		m.initial = values
		return nil
	}
}

// OptManagerCapacity preallocates room for n slots.
func OptManagerCapacity[K comparable, V any](n int) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		m.capacity = n
		return nil
	}
}

// OptManagerIndexes attaches indexes in order once the store is built. The
// first one becomes the primary.
func OptManagerIndexes[K comparable, V any](indexes ...Index[V]) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		m.pending = append(m.pending, indexes...)
		return nil
	}
}

// OptManagerLogger sets the logger.
func OptManagerLogger[K comparable, V any](l logger.Logger) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		m.logger = l
		return nil
	}
}

// OptManagerStats sets the stats client mutations are reported to.
func OptManagerStats[K comparable, V any](c stats.StatsClient) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		m.stats = c
		return nil
	}
}

// OptManagerConfig applies the manager settings of c.
func OptManagerConfig[K comparable, V any](c *Config) ManagerOption[K, V] {
	return func(m *Manager[K, V]) error {
		if c == nil {
			return nil
		}
		if err := c.Validate(); err != nil {
			return err
		}
		m.lockTimeout = time.Duration(c.LockTimeout)
		return nil
	}
}

// Manager owns a slot store and the indexes attached to it, and keeps every
// index in step with every mutation of the store.
//
// One mutex guards the store and all index mappings. Mutations hold it
// until every index has been updated.
type Manager[K comparable, V any] struct {
	mu      sync.Mutex
	values  *slots.Observable[V]
	src     *lockedSource[V]
	primary primaryIndex[K, V]
	indexes []Index[V]

	initial     []V
	capacity    int
	pending     []Index[V]
	lockTimeout time.Duration

	logger logger.Logger
	stats  stats.StatsClient
}

// NewManager returns a Manager configured by opts.
func NewManager[K comparable, V any](opts ...ManagerOption[K, V]) (*Manager[K, V], error) {
	m := &Manager[K, V]{
		lockTimeout: DefaultLockTimeout,
		logger:      logger.NopLogger,
		stats:       stats.NopStatsClient,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}

	var store *slots.Store[V]
	if m.initial != nil {
		store = slots.NewStoreFrom(m.initial)
	} else {
		store = slots.NewStore[V](m.capacity)
	}
	m.initial = nil
	m.values = slots.NewObservable(store)
	m.values.Subscribe(m.onChange)
	m.src = &lockedSource[V]{Mutex: &m.mu, r: m.values}

	pending := m.pending
	m.pending = nil
	for _, idx := range pending {
		if err := m.AddIndex(idx); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// onChange runs with m.mu held, inside the store mutation that produced c.
func (m *Manager[K, V]) onChange(c slots.Change[V]) {
	if c.IsReset() {
		m.reindexAll()
		return
	}
	if c.HasOld {
		for _, idx := range m.indexes {
			idx.RemoveValue(c.Old, c.Slot)
		}
	}
	if !c.HasNew {
		return
	}
	if m.primary != nil {
		// The primary keeps the slot it first saw for a key.
		if _, ok := m.primary.lookup(m.primary.keyOf(c.New)); !ok {
			m.primary.ApplyValue(c.New, c.Slot)
		}
	}
	if len(m.indexes) > 1 {
		for _, idx := range m.indexes[1:] {
			idx.ApplyValue(c.New, c.Slot)
		}
	}
}

func (m *Manager[K, V]) reindexAll() {
	start := time.Now()
	for _, idx := range m.indexes {
		idx.Reindex(m.src)
	}
	m.stats.Count(stats.MetricReindex, 1, 1.0)
	m.stats.Timing(stats.MetricReindexTime, time.Since(start), 1.0)
	m.logger.Debugf("rebuilt %d indexes over %d slots in %s", len(m.indexes), m.values.Len(), time.Since(start))
}

func (m *Manager[K, V]) gauge() {
	m.stats.Gauge(stats.MetricSlots, float64(m.values.Len()), 1.0)
	m.stats.Gauge(stats.MetricFree, float64(m.values.Free()), 1.0)
}

func (m *Manager[K, V]) appendLocked(v V) int {
	slot := m.values.Append(v)
	m.stats.Count(stats.MetricAppend, 1, 1.0)
	m.gauge()
	return slot
}

func (m *Manager[K, V]) setLocked(slot int, v V) error {
	if err := m.values.Set(slot, v); err != nil {
		return err
	}
	m.stats.Count(stats.MetricSet, 1, 1.0)
	m.gauge()
	return nil
}

func (m *Manager[K, V]) removeLocked(slot int) error {
	if err := m.values.RemoveAt(slot); err != nil {
		return err
	}
	m.stats.Count(stats.MetricRemove, 1, 1.0)
	m.gauge()
	return nil
}

// Append stores v in a free slot, or a new one, and returns the slot.
func (m *Manager[K, V]) Append(v V) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(v)
}

// Set overwrites slot with v. A free slot is taken back into use.
func (m *Manager[K, V]) Set(slot int, v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(slot, v)
}

// RemoveAt frees slot. Removing a free slot does nothing.
func (m *Manager[K, V]) RemoveAt(slot int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(slot)
}

// Clear empties the store and rebuilds every index.
func (m *Manager[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values.Clear()
	m.stats.Count(stats.MetricClear, 1, 1.0)
	m.gauge()
}

// Reindex rebuilds every index from the current store.
func (m *Manager[K, V]) Reindex() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reindexAll()
}

// Insert is not supported; positions never shift.
func (m *Manager[K, V]) Insert(i int, v V) error {
	return m.values.Insert(i, v)
}

// IndexOf is not supported; look values up through an index.
func (m *Manager[K, V]) IndexOf(v V) (int, error) {
	return m.values.IndexOf(v)
}

// At returns the value at slot and whether the slot is live.
func (m *Manager[K, V]) At(slot int) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.At(slot)
}

// Len returns the number of slots, free ones included.
func (m *Manager[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Len()
}

// Live returns the number of live slots.
func (m *Manager[K, V]) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Live()
}

// All yields every live slot and its value in slot order. Each step reads
// under the lock, so the loop body may call back into the Manager.
func (m *Manager[K, V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for slot := 0; slot < m.Len(); slot++ {
			v, ok := m.At(slot)
			if !ok {
				continue
			}
			if !yield(slot, v) {
				return
			}
		}
	}
}

// GetValues returns the values at slots, skipping free ones.
func (m *Manager[K, V]) GetValues(slots []int) ([]V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]V, 0, len(slots))
	for _, slot := range slots {
		if slot < 0 || slot >= m.values.Len() {
			return nil, errors.Newf(ErrSlotOutOfRange, "slot %d out of range [0, %d)", slot, m.values.Len())
		}
		if v, ok := m.values.At(slot); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Primary returns the primary index, or nil before one is attached.
func (m *Manager[K, V]) Primary() Single[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.primary == nil {
		return nil
	}
	return m.primary
}

// Index returns the index attached at position number, or nil.
func (m *Manager[K, V]) Index(number int) Index[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if number < 0 || number >= len(m.indexes) {
		return nil
	}
	return m.indexes[number]
}

// IndexByName returns the attached index called name, or nil.
func (m *Manager[K, V]) IndexByName(name string) Index[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexByName(name)
}

func (m *Manager[K, V]) indexByName(name string) Index[V] {
	for _, idx := range m.indexes {
		if idx.Name() == name {
			return idx
		}
	}
	return nil
}

// Indexes returns the attached indexes in attachment order.
func (m *Manager[K, V]) Indexes() []Index[V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Index[V](nil), m.indexes...)
}

// Locker returns the lock guarding the store and every index. Hold it to
// run several operations against the store's internals atomically; the
// Manager's own methods must not be called while holding it.
func (m *Manager[K, V]) Locker() sync.Locker { return &m.mu }

// LockTimeout returns the advisory lock-wait budget. The Manager itself
// waits on its lock without a bound.
func (m *Manager[K, V]) LockTimeout() time.Duration { return m.lockTimeout }

// AddIndex attaches idx and builds it from the current store. The first
// index attached must be a UniqueIndex or SortedUniqueIndex keyed by K.
func (m *Manager[K, V]) AddIndex(idx Index[V]) error {
	if idx == nil {
		return errors.New(ErrNilIndex, "nil index")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexByName(idx.Name()) != nil {
		return errors.Newf(ErrIndexExists, "index %q already attached", idx.Name())
	}
	if m.primary == nil {
		p, ok := idx.(primaryIndex[K, V])
		if !ok {
			if _, unique := idx.(uniqueIndex); unique {
				return mismatch[K](idx.Name(), "unique")
			}
			return errors.Newf(ErrPrimaryNotUnique, "first index %q is not a unique index", idx.Name())
		}
		m.primary = p
	}
	m.indexes = append(m.indexes, idx)

	start := time.Now()
	idx.Reindex(m.src)
	m.stats.Timing(stats.MetricReindexTime, time.Since(start), 1.0)
	m.stats.Gauge(stats.MetricIndexes, float64(len(m.indexes)), 1.0)
	m.logger.Debugf("attached index %q at %d", idx.Name(), len(m.indexes)-1)
	return nil
}

// SubscribeIndex records owner as a user of idx and returns the number of
// owners. Subscribing the same owner twice counts once.
func (m *Manager[K, V]) SubscribeIndex(idx Index[V], owner Subscriber) int {
	if idx == nil {
		return 0
	}
	return idx.AddReference(ReferenceAdd, owner)
}

// UnsubscribeIndex releases owner's hold on idx. When no owner is left the
// index is detached and UnsubscribeIndex returns true. The primary is never
// detached.
func (m *Manager[K, V]) UnsubscribeIndex(idx Index[V], owner Subscriber) bool {
	if idx == nil {
		return false
	}
	if idx.AddReference(ReferenceRelease, owner) > 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, attached := range m.indexes {
		if attached != idx {
			continue
		}
		if i == 0 {
			m.logger.Warnf("primary index %q has no subscribers left; keeping it attached", idx.Name())
			return false
		}
		m.indexes = append(m.indexes[:i:i], m.indexes[i+1:]...)
		m.stats.Gauge(stats.MetricIndexes, float64(len(m.indexes)), 1.0)
		m.logger.Infof("detached index %q", idx.Name())
		return true
	}
	return false
}

// Compact packs the sorted unique index called name, dropping dead keys
// once enough have accumulated. It reports whether the index was rebuilt.
func (m *Manager[K, V]) Compact(name string) (bool, error) {
	idx := m.IndexByName(name)
	if idx == nil {
		return false, errors.Newf(ErrIndexNotFound, "no index named %q", name)
	}
	p, ok := idx.(interface{ Pack() bool })
	if !ok {
		return false, errors.Newf(ErrNotCompactable, "index %q does not support compaction", name)
	}
	packed := p.Pack()
	if packed {
		m.logger.Debugf("compacted index %q", name)
	}
	return packed, nil
}
