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
	"io"
	"os"
	"sync"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/util"
)

// Stdio is a fairly simple Emitter that writes one line per Sample
// to stdout.
type Stdio struct {
	// Out is where the lines go.
	Out io.Writer

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// Tags prefixes the generator name to each output line.
	Tags bool

	// PadTags adds some padding to tags.
	PadTags bool

	// JSON writes each Sample as a JSON object instead of its text.
	JSON bool

	sync.Mutex
}

// NewStdio creates a new Stdio that writes to os.Stdout.
func NewStdio() *Stdio {
	return &Stdio{
		Out: os.Stdout,
	}
}

func (s *Stdio) printf(x *Sample, format string, args ...interface{}) error {
	var (
		prefix string
		tag    = x.Name
	)
	if s.Timestamps {
		prefix = fmt.Sprintf("%-31s ", core.Timestamp(x.At))
	}
	if s.Tags {
		if s.PadTags {
			tag = fmt.Sprintf("% 10s", tag)
		}
		prefix += tag + " "
	}

	_, err := fmt.Fprintf(s.Out, "%s"+format, append([]interface{}{prefix}, args...)...)
	return err
}

// Emit writes the Sample.
func (s *Stdio) Emit(ctx context.Context, x *Sample) error {
	s.Lock()
	defer s.Unlock()

	if s.JSON {
		return s.printf(x, "%s\n", util.JS(x))
	}
	return s.printf(x, "%s\n", x.Text)
}
