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

package tools

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/Comcast/randodo/core"

	"github.com/jsccast/yaml"
)

// Expectation is a claim about the samples a generator produces.
type Expectation struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Name is the name of the generator.
	Name string `json:"name" yaml:"name"`

	// Samples is the number of samples to check.  Zero means
	// DefaultExpectationSamples.
	Samples int `json:"samples,omitempty" yaml:"samples,omitempty"`

	// Pattern, if given, is a regular expression that every
	// sample must match in full.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// MinLength and MaxLength, when not zero, bound the length
	// of every sample in characters.
	MinLength int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength int `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`

	// Distinct, when not zero, is the minimum number of different
	// samples.
	Distinct int `json:"distinct,omitempty" yaml:"distinct,omitempty"`
}

// DefaultExpectationSamples is the default for Expectation.Samples.
var DefaultExpectationSamples = 100

// Expectations is a list of Expectations, usually read from a file.
type Expectations struct {
	Doc          string         `json:"doc,omitempty" yaml:"doc,omitempty"`
	Expectations []*Expectation `json:"expectations" yaml:"expectations"`
}

// ParseExpectations parses YAML (or JSON) Expectations.
func ParseExpectations(bs []byte) (*Expectations, error) {
	var es Expectations
	if err := yaml.Unmarshal(bs, &es); err != nil {
		return nil, err
	}
	return &es, nil
}

// Failure describes an unmet Expectation.
type Failure struct {
	Name   string `json:"name"`
	Sample string `json:"sample,omitempty"`
	Reason string `json:"reason"`
}

func (f *Failure) Error() string {
	if f.Sample == "" {
		return f.Name + ": " + f.Reason
	}
	return fmt.Sprintf("%s: %s: %q", f.Name, f.Reason, f.Sample)
}

// Check draws samples from the table and returns the first problem
// found, if any.
func (e *Expectation) Check(table *core.Table) *Failure {
	gen, have := table.Lookup(e.Name)
	if !have {
		return &Failure{Name: e.Name, Reason: "generator not found"}
	}

	var p *regexp.Regexp
	if e.Pattern != "" {
		var err error
		if p, err = regexp.Compile(`^(?:` + e.Pattern + `)$`); err != nil {
			return &Failure{Name: e.Name, Reason: "bad pattern: " + err.Error()}
		}
	}

	n := e.Samples
	if n <= 0 {
		n = DefaultExpectationSamples
	}

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		out := core.NewOutput()
		gen.Generate(out)
		s := out.String()
		seen[s] = true

		if p != nil && !p.MatchString(s) {
			return &Failure{Name: e.Name, Sample: s, Reason: "doesn't match " + e.Pattern}
		}
		length := utf8.RuneCountInString(s)
		if 0 < e.MinLength && length < e.MinLength {
			return &Failure{Name: e.Name, Sample: s, Reason: fmt.Sprintf("shorter than %d", e.MinLength)}
		}
		if 0 < e.MaxLength && e.MaxLength < length {
			return &Failure{Name: e.Name, Sample: s, Reason: fmt.Sprintf("longer than %d", e.MaxLength)}
		}
	}

	if 0 < e.Distinct && len(seen) < e.Distinct {
		return &Failure{
			Name:   e.Name,
			Reason: fmt.Sprintf("only %d distinct samples (wanted %d)", len(seen), e.Distinct),
		}
	}

	return nil
}

// Check checks every Expectation and returns all the Failures.
func (es *Expectations) Check(table *core.Table) []*Failure {
	var acc []*Failure
	for _, e := range es.Expectations {
		if f := e.Check(table); f != nil {
			acc = append(acc, f)
		}
	}
	return acc
}
