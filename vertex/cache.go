// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import "github.com/gogpu/ge/internal/cache"

// DecoderCache memoizes one Decoder per distinct format key. Keys carry both
// layout and mode bits, so byte-identical layouts under different UV modes or
// through bits get distinct decoders.
//
// The cache survives across batches and frames. Clear must be called when the
// rendering context is invalidated (context loss, viewport resize) and must
// never run while a batch is mid-accumulation; the engine enforces that.
type DecoderCache struct {
	cache *cache.Cache[FormatKey, *Decoder]
}

// NewDecoderCache creates an empty decoder cache.
func NewDecoderCache() *DecoderCache {
	return &DecoderCache{
		cache: cache.New[FormatKey, *Decoder](),
	}
}

// Get returns the decoder for key, building and memoizing it on first use.
func (c *DecoderCache) Get(key FormatKey) *Decoder {
	return c.cache.GetOrCreate(key, func() *Decoder {
		return NewDecoder(key)
	})
}

// Clear releases every cached decoder.
func (c *DecoderCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of distinct formats seen since the last Clear.
func (c *DecoderCache) Len() int {
	return c.cache.Len()
}

// Stats reports cumulative cache hits and misses.
func (c *DecoderCache) Stats() (hits, misses uint64) {
	return c.cache.Stats()
}
