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

// Package sio provides couplings that send generated text
// somewhere: stdout, an MQTT broker, or websocket clients.
package sio

import (
	"context"
	"time"

	"github.com/Comcast/randodo/core"
)

// Sample is one generated text.
type Sample struct {
	Name string    `json:"name"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`

	// Truncated reports that the reference depth limit was hit.
	Truncated bool `json:"truncated,omitempty"`

	// Error is a problem that prevented generation.
	Error string `json:"error,omitempty"`
}

// Generate makes a Sample from the table.
//
// A maxDepth of zero means core.DefaultMaxDepth.
func Generate(table *core.Table, name string, maxDepth int) (*Sample, error) {
	gen, have := table.Lookup(name)
	if !have {
		return nil, &core.UnknownGenerator{Name: name}
	}
	out := core.NewOutput()
	out.MaxDepth = maxDepth
	gen.Generate(out)
	return &Sample{
		Name:      name,
		Text:      out.String(),
		At:        time.Now().UTC(),
		Truncated: out.Truncated,
	}, nil
}

// Emitter sends Samples somewhere.
type Emitter interface {
	Emit(ctx context.Context, s *Sample) error
}

// EmitterFunc makes a function an Emitter.
type EmitterFunc func(ctx context.Context, s *Sample) error

func (f EmitterFunc) Emit(ctx context.Context, s *Sample) error {
	return f(ctx, s)
}

// Emitters sends each Sample to every Emitter in order.
//
// The first error stops the emission.
type Emitters []Emitter

func (es Emitters) Emit(ctx context.Context, s *Sample) error {
	for _, e := range es {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
