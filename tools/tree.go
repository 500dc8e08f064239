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
	"sort"

	"github.com/Comcast/randodo/core"

	"gopkg.in/yaml.v2"
)

// Node is a plain rendition of a generator tree node.
type Node struct {
	Type     string  `json:"type" yaml:"type"`
	Value    string  `json:"value,omitempty" yaml:"value,omitempty"`
	Chars    string  `json:"chars,omitempty" yaml:"chars,omitempty"`
	Min      *int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *int    `json:"max,omitempty" yaml:"max,omitempty"`
	Name     string  `json:"name,omitempty" yaml:"name,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree converts a generator tree into Nodes.
func Tree(gen core.Generator) *Node {
	switch g := gen.(type) {
	case *core.Literal:
		return &Node{Type: "literal", Value: g.Value}
	case *core.CharClass:
		return &Node{Type: "class", Chars: string(g.Chars)}
	case *core.Sequence:
		n := &Node{Type: "sequence"}
		for _, child := range g.Gens {
			n.Children = append(n.Children, Tree(child))
		}
		return n
	case *core.Alternation:
		n := &Node{Type: "alternation"}
		for _, child := range g.Branches {
			n.Children = append(n.Children, Tree(child))
		}
		return n
	case *core.Repetition:
		min, max := g.Min, g.Max
		return &Node{
			Type:     "repetition",
			Min:      &min,
			Max:      &max,
			Children: []*Node{Tree(g.Gen)},
		}
	case *core.Reference:
		return &Node{Type: "reference", Name: g.Name}
	case *core.Filtered:
		return &Node{
			Type:     "filtered",
			Name:     g.Name,
			Children: []*Node{Tree(g.Gen)},
		}
	case nil:
		return &Node{Type: "nil"}
	default:
		return &Node{Type: fmt.Sprintf("%T", gen)}
	}
}

// TreeYAML renders a generator tree as YAML.
func TreeYAML(gen core.Generator) ([]byte, error) {
	return yaml.Marshal(Tree(gen))
}

// Walk calls f on every node in the tree, parents before children.
// Walk doesn't follow References.  If f returns false, the node's
// children are skipped.
func Walk(gen core.Generator, f func(gen core.Generator, depth int) bool) {
	walk(gen, 0, f)
}

func walk(gen core.Generator, depth int, f func(core.Generator, int) bool) {
	if gen == nil || !f(gen, depth) {
		return
	}
	var children []core.Generator
	switch g := gen.(type) {
	case *core.Sequence:
		children = g.Gens
	case *core.Alternation:
		children = g.Branches
	case *core.Repetition:
		children = []core.Generator{g.Gen}
	case *core.Filtered:
		children = []core.Generator{g.Gen}
	}
	for _, child := range children {
		walk(child, depth+1, f)
	}
}

// References returns the sorted names referenced in the tree.
func References(gen core.Generator) []string {
	seen := make(map[string]bool)
	Walk(gen, func(gen core.Generator, depth int) bool {
		if r, is := gen.(*core.Reference); is {
			seen[r.Name] = true
		}
		return true
	})
	return keysToStringSlice(seen)
}

// keysToStringSlice returns the sorted keys of the map.  If the map
// is empty and a default value is provided, that value is returned.
func keysToStringSlice(m map[string]bool, defaultValue ...string) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)

	if len(list) == 0 && len(defaultValue) > 0 {
		return []string{defaultValue[0]}
	}

	return list
}
