/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
)

// MemoryBackend keeps entries in a map. Suitable for a single process.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]models.CacheEntry)}
}

var _ Backend = (*MemoryBackend)(nil)

func (b *MemoryBackend) GetEntry(_ context.Context, deviceID string) (models.CacheEntry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.entries[deviceID]

	return entry, ok, nil
}

func (b *MemoryBackend) PutEntry(_ context.Context, entry *models.CacheEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[entry.DeviceID] = *entry

	return nil
}

func (b *MemoryBackend) DeleteEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var n int64

	for id, entry := range b.entries {
		if entry.FetchedAt.Before(cutoff) {
			delete(b.entries, id)
			n++
		}
	}

	return n, nil
}

// Len returns the number of stored entries.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries)
}
