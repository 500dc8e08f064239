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

// Package storage defines persistence for definitions and recent
// samples.
package storage

import (
	"context"

	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/sio"
)

// Storage is a persistence interface for a service that serves
// generators.
type Storage interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// PutDef adds or replaces a definition.  A replaced
	// definition keeps its original position.
	PutDef(ctx context.Context, d *defs.Definition) error

	// RemDef removes a definition.  Removing a definition that
	// doesn't exist is not an error.
	RemDef(ctx context.Context, name string) error

	// GetDefs returns all definitions in the order they were
	// first added.
	GetDefs(ctx context.Context) (*defs.Definitions, error)

	// AddSample records a Sample.
	AddSample(ctx context.Context, s *sio.Sample) error

	// GetSamples returns up to limit of the most recent Samples
	// for the given generator, oldest first.  A limit of zero
	// means no limit.
	GetSamples(ctx context.Context, name string, limit int) ([]*sio.Sample, error)
}

// NoopStorage remembers nothing.
type NoopStorage struct {
}

func NewNoopStorage() *NoopStorage {
	return &NoopStorage{}
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) PutDef(ctx context.Context, d *defs.Definition) error {
	return nil
}

func (s *NoopStorage) RemDef(ctx context.Context, name string) error {
	return nil
}

func (s *NoopStorage) GetDefs(ctx context.Context) (*defs.Definitions, error) {
	return &defs.Definitions{}, nil
}

func (s *NoopStorage) AddSample(ctx context.Context, x *sio.Sample) error {
	return nil
}

func (s *NoopStorage) GetSamples(ctx context.Context, name string, limit int) ([]*sio.Sample, error) {
	return nil, nil
}
