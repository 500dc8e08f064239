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

package defs

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/Comcast/randodo/core"

	"github.com/jsccast/yaml"
)

func logf(format string, args ...interface{}) {
	if !Debug {
		return
	}
	log.Printf("defs "+format, args...)
}

// ParseYAML parses a YAML (or JSON) collection of definitions.
func ParseYAML(bs []byte) (*Definitions, error) {
	var ds Definitions
	if err := yaml.Unmarshal(bs, &ds); err != nil {
		return nil, err
	}
	for i, d := range ds.Defs {
		if d == nil {
			return nil, fmt.Errorf("definition %d is empty", i)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("definition %d has no name", i)
		}
	}
	return &ds, nil
}

// YAML renders the definitions as a YAML collection.
func (ds *Definitions) YAML() ([]byte, error) {
	return yaml.Marshal(ds)
}

// IsYAMLFilename reports whether the filename's extension indicates
// a YAML or JSON collection.
func IsYAMLFilename(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Parse parses definitions given a hint of the format.  When yamlish
// is false, the line format is expected.
func Parse(bs []byte, yamlish bool) (*Definitions, error) {
	if yamlish {
		return ParseYAML(bs)
	}
	return ParseLines(bytes.NewReader(bs))
}

// ReadFile reads definitions from a file.
//
// The format is chosen by the filename's extension (see
// IsYAMLFilename).  Any '%inline("NAME")' is replaced by the content
// of the file NAME relative to the directory of the given file.
func ReadFile(filename string) (*Definitions, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	ds, err := Parse(bs, IsYAMLFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return ds, nil
}

// Load reads the file and compiles its definitions into a new Table.
func Load(ctx context.Context, filename string, sm core.SourceMaker, interpreters core.InterpretersMap) (*Definitions, *core.Table, error) {
	ds, err := ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	table, err := ds.Table(ctx, sm, interpreters)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ds, table, nil
}

// Table compiles the definitions into a new Table that uses the given
// SourceMaker (or core.DefaultSourceMaker if nil).
func (ds *Definitions) Table(ctx context.Context, sm core.SourceMaker, interpreters core.InterpretersMap) (*core.Table, error) {
	var table *core.Table
	if sm == nil {
		table = core.NewTable()
	} else {
		table = core.NewTableWith(sm)
	}
	if err := ds.Compile(ctx, table, interpreters); err != nil {
		return nil, err
	}
	return table, nil
}
