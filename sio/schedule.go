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

package sio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Comcast/randodo/core"

	"github.com/gorhill/cronexpr"
)

// Schedule generates Samples for a generator according to a cron
// expression.
//
// See https://github.com/gorhill/cronexpr for the syntax.  A
// seven-field expression can fire every second.
type Schedule struct {
	Name string `json:"name" yaml:"name"`
	Cron string `json:"cron" yaml:"cron"`

	// N is the number of Samples per firing.  Zero means one.
	N int `json:"n,omitempty" yaml:",omitempty"`

	expr *cronexpr.Expression
}

// Compile parses the cron expression.
func (s *Schedule) Compile() error {
	expr, err := cronexpr.Parse(s.Cron)
	if err != nil {
		return fmt.Errorf("schedule for %q: %w", s.Name, err)
	}
	s.expr = expr
	return nil
}

// Next returns the next firing after the given time.  A zero time
// means the schedule will never fire again.
func (s *Schedule) Next(after time.Time) time.Time {
	if s.expr == nil {
		return time.Time{}
	}
	return s.expr.Next(after)
}

// Scheduler runs Schedules.
type Scheduler struct {
	Table   *core.UpdatableTable
	Emitter Emitter

	// MaxDepth is used for every Sample.
	MaxDepth int

	Debug bool

	wg sync.WaitGroup
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("Scheduler."+format, args...)
	}
}

// Start compiles all the Schedules and then runs each one in its own
// goroutine until the context is done.
//
// If any Schedule doesn't compile, nothing is started.
func (s *Scheduler) Start(ctx context.Context, schedules []*Schedule) error {
	for _, sched := range schedules {
		if err := sched.Compile(); err != nil {
			return err
		}
	}
	for _, sched := range schedules {
		s.wg.Add(1)
		go func(sched *Schedule) {
			defer s.wg.Done()
			s.run(ctx, sched)
		}(sched)
	}
	return nil
}

// Wait waits for all Schedules to stop.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, sched *Schedule) {
	n := sched.N
	if n <= 0 {
		n = 1
	}

	for {
		next := sched.Next(time.Now())
		if next.IsZero() {
			s.logf("run %s done", sched.Name)
			return
		}
		s.logf("run %s next at %s", sched.Name, next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		for i := 0; i < n; i++ {
			sample, err := Generate(s.Table.Table(), sched.Name, s.MaxDepth)
			if err != nil {
				log.Printf("Scheduler %s: %v", sched.Name, err)
				break
			}
			if err = s.Emitter.Emit(ctx, sample); err != nil {
				log.Printf("Scheduler %s emit error: %v", sched.Name, err)
			}
		}
	}
}
