/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies non-negative integers on demand.
//
// Generators choose characters, branches, and repetition counts by
// taking Next() modulo the number of possibilities.
type Source interface {
	Next() int
}

// SourceMaker gives a Source to each node that needs one.
//
// A maker can hand out the same Source every time (see Shared) or a
// fresh one per node, which is what the tests do.
type SourceMaker func() Source

// Shared returns a SourceMaker that always returns src.
func Shared(src Source) SourceMaker {
	return func() Source {
		return src
	}
}

// RandSource is a Source backed by math/rand.
//
// Not safe for concurrent use.  See LockedSource.
type RandSource struct {
	r *rand.Rand
}

// NewRandSource makes a RandSource with the given seed.
func NewRandSource(seed int64) *RandSource {
	return &RandSource{
		r: rand.New(rand.NewSource(seed)),
	}
}

func (s *RandSource) Next() int {
	return s.r.Int()
}

// LCG is a deterministic Source using Knuth's MMIX parameters.
//
// Handy when you want the same samples on every platform and every
// Go release, which math/rand doesn't promise.
type LCG struct {
	state uint64
}

// NewLCG creates a new LCG with the given seed.
func NewLCG(seed uint64) *LCG {
	return &LCG{state: seed}
}

func (l *LCG) Next() int {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	// Top bits have the longest period.
	return int(l.state >> 33)
}

// LockedSource serializes access to another Source.
type LockedSource struct {
	sync.Mutex
	src Source
}

func NewLockedSource(src Source) *LockedSource {
	return &LockedSource{
		src: src,
	}
}

func (s *LockedSource) Next() int {
	s.Lock()
	n := s.src.Next()
	s.Unlock()
	return n
}

// DefaultSourceMaker is used by NewTable.
//
// All nodes share one LockedSource seeded from the clock.
var DefaultSourceMaker = func() SourceMaker {
	return Shared(NewLockedSource(NewRandSource(time.Now().UnixNano())))
}

// pick returns a number in [0,n) drawn from src.
func pick(src Source, n int) int {
	x := src.Next() % n
	if x < 0 {
		// A misbehaving Source.
		x += n
	}
	return x
}
