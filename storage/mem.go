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

package storage

import (
	"context"
	"sync"

	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/sio"
)

// DefaultMaxSamples is the default number of Samples MemStorage
// keeps for each generator.
var DefaultMaxSamples = 100

// MemStorage keeps everything in memory.
type MemStorage struct {
	// MaxSamples is the number of Samples kept per generator.
	MaxSamples int

	defs    []*defs.Definition
	samples map[string][]*sio.Sample

	sync.Mutex
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		MaxSamples: DefaultMaxSamples,
		samples:    make(map[string][]*sio.Sample),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) PutDef(ctx context.Context, d *defs.Definition) error {
	s.Lock()
	defer s.Unlock()

	for i, old := range s.defs {
		if old.Name == d.Name {
			s.defs[i] = d
			return nil
		}
	}
	s.defs = append(s.defs, d)
	return nil
}

func (s *MemStorage) RemDef(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()

	for i, d := range s.defs {
		if d.Name == name {
			s.defs = append(s.defs[:i:i], s.defs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemStorage) GetDefs(ctx context.Context) (*defs.Definitions, error) {
	s.Lock()
	defer s.Unlock()

	ds := &defs.Definitions{
		Defs: make([]*defs.Definition, len(s.defs)),
	}
	copy(ds.Defs, s.defs)
	return ds, nil
}

func (s *MemStorage) AddSample(ctx context.Context, x *sio.Sample) error {
	s.Lock()
	defer s.Unlock()

	acc := append(s.samples[x.Name], x)
	if 0 < s.MaxSamples && s.MaxSamples < len(acc) {
		acc = acc[len(acc)-s.MaxSamples:]
	}
	s.samples[x.Name] = acc
	return nil
}

func (s *MemStorage) GetSamples(ctx context.Context, name string, limit int) ([]*sio.Sample, error) {
	s.Lock()
	defer s.Unlock()

	have := s.samples[name]
	if 0 < limit && limit < len(have) {
		have = have[len(have)-limit:]
	}
	acc := make([]*sio.Sample, len(have))
	copy(acc, have)
	return acc, nil
}
