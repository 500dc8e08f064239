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

package main

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/sio"
	"github.com/Comcast/randodo/storage"
	"github.com/Comcast/randodo/util"
)

// Service holds the current generators and knows how to change them.
type Service struct {
	Storage      storage.Storage
	Interpreters core.InterpretersMap
	SourceMaker  core.SourceMaker

	// Table is rebuilt and swapped whenever a definition changes.
	Table *core.UpdatableTable

	// MaxDepth limits references during generation.
	MaxDepth int

	// MaxN limits the number of samples per request.
	MaxN int

	// Emitter, if not nil, gets every generated Sample.
	Emitter sio.Emitter

	// Record stores generated Samples.
	Record bool

	Debug bool

	// sync.Mutex serializes changes to definitions.
	sync.Mutex
}

var (
	BadName  = errors.New("bad definition name")
	TooMany  = errors.New("too many samples requested")
	NotFound = errors.New("not found")
)

func NewService(s storage.Storage) *Service {
	return &Service{
		Storage:      s,
		Interpreters: core.DefaultInterpreters,
		Table:        core.NewUpdatableTable(core.NewTable()),
		MaxDepth:     core.DefaultMaxDepth,
		MaxN:         1000,
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("Service."+format, args...)
	}
}

func (s *Service) build(ctx context.Context, ds *defs.Definitions) (*core.Table, error) {
	return ds.Table(ctx, s.SourceMaker, s.Interpreters)
}

// Load rebuilds the table from storage.
func (s *Service) Load(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	ds, err := s.Storage.GetDefs(ctx)
	if err != nil {
		return err
	}
	t, err := s.build(ctx, ds)
	if err != nil {
		return err
	}
	s.Table.SetTable(t)
	s.logf("Load %d definitions", len(ds.Defs))
	return nil
}

// Defs returns the stored definitions.
func (s *Service) Defs(ctx context.Context) (*defs.Definitions, error) {
	return s.Storage.GetDefs(ctx)
}

// PutDef adds or replaces a definition.
//
// The definition is stored only if all the definitions, including
// this one, compile.
func (s *Service) PutDef(ctx context.Context, d *defs.Definition) error {
	if d.Name == "" {
		return BadName
	}

	s.Lock()
	defer s.Unlock()

	ds, err := s.Storage.GetDefs(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i, old := range ds.Defs {
		if old.Name == d.Name {
			ds.Defs[i] = d
			replaced = true
		}
	}
	if !replaced {
		ds.Defs = append(ds.Defs, d)
	}

	t, err := s.build(ctx, ds)
	if err != nil {
		return err
	}
	if err = s.Storage.PutDef(ctx, d); err != nil {
		return err
	}
	s.Table.SetTable(t)
	s.logf("PutDef %s", util.JShort(d))
	return nil
}

// Seed adds or replaces all of the given definitions at once.
func (s *Service) Seed(ctx context.Context, seed *defs.Definitions) error {
	s.Lock()
	defer s.Unlock()

	ds, err := s.Storage.GetDefs(ctx)
	if err != nil {
		return err
	}
	for _, d := range seed.Defs {
		if d.Name == "" {
			return BadName
		}
		replaced := false
		for i, old := range ds.Defs {
			if old.Name == d.Name {
				ds.Defs[i] = d
				replaced = true
			}
		}
		if !replaced {
			ds.Defs = append(ds.Defs, d)
		}
	}

	t, err := s.build(ctx, ds)
	if err != nil {
		return err
	}
	for _, d := range seed.Defs {
		if err = s.Storage.PutDef(ctx, d); err != nil {
			return err
		}
	}
	s.Table.SetTable(t)
	s.logf("Seed %d definitions", len(seed.Defs))
	return nil
}

// RemDef removes a definition.  References to it will generate
// nothing.
func (s *Service) RemDef(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()

	ds, err := s.Storage.GetDefs(ctx)
	if err != nil {
		return err
	}

	keep := ds.Defs[:0]
	for _, d := range ds.Defs {
		if d.Name != name {
			keep = append(keep, d)
		}
	}
	if len(keep) == len(ds.Defs) {
		return NotFound
	}
	ds.Defs = keep

	t, err := s.build(ctx, ds)
	if err != nil {
		return err
	}
	if err = s.Storage.RemDef(ctx, name); err != nil {
		return err
	}
	s.Table.SetTable(t)
	s.logf("RemDef %s", name)
	return nil
}

// Generate makes n Samples.
func (s *Service) Generate(ctx context.Context, name string, n int) ([]*sio.Sample, error) {
	if n <= 0 {
		n = 1
	}
	if 0 < s.MaxN && s.MaxN < n {
		return nil, TooMany
	}

	table := s.Table.Table()
	acc := make([]*sio.Sample, 0, n)
	for i := 0; i < n; i++ {
		x, err := sio.Generate(table, name, s.MaxDepth)
		if err != nil {
			return nil, err
		}
		if err = s.Emit(ctx, x); err != nil {
			log.Printf("Service.Generate emit error: %v", err)
		}
		acc = append(acc, x)
	}
	return acc, nil
}

// Emit records the Sample (if requested) and passes it to the
// Emitter.
func (s *Service) Emit(ctx context.Context, x *sio.Sample) error {
	if s.Record {
		if err := s.Storage.AddSample(ctx, x); err != nil {
			return err
		}
	}
	if s.Emitter != nil {
		return s.Emitter.Emit(ctx, x)
	}
	return nil
}

// Samples returns recorded Samples.
func (s *Service) Samples(ctx context.Context, name string, limit int) ([]*sio.Sample, error) {
	return s.Storage.GetSamples(ctx, name, limit)
}
