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
	"fmt"
	"strconv"
)

// state is where the compiler is within a template.
type state int

const (
	stateDefault state = iota
	stateClass
	stateName
	stateRepetition
	stateEscape
)

var stateNames = map[state]string{
	stateDefault:    "default",
	stateClass:      "class",
	stateName:       "name",
	stateRepetition: "repetition",
	stateEscape:     "escape",
}

func (s state) String() string {
	return stateNames[s]
}

// eoi is the pseudo-character processed after the last real one.
const eoi rune = -1

// frame holds the branches of a group that's still open.
//
// The whole template is an implicit group, so there's always at least
// one frame.
type frame struct {
	// branches are the completed branches, each a Sequence.
	branches []Generator

	// current is the branch that's being built.
	current []Generator

	// pos is the position of the '(' that opened this group.
	pos int
}

func (f *frame) closeBranch() {
	f.branches = append(f.branches, NewSequence(f.current))
	f.current = nil
}

func (f *frame) add(gen Generator) {
	f.current = append(f.current, gen)
}

// compiler is a single-pass character-at-a-time state machine.
//
// Nested constructs don't recurse.  Instead the compiler keeps a
// stack of saved states (so that an escape inside a class returns to
// the class) and a stack of frames for open groups.
type compiler struct {
	template string
	table    *Table
	pos      int

	state  state
	saved  []state
	frames []*frame

	// literal is pending literal text in the default state.
	literal []rune

	// name accumulates a variable name.
	name []rune

	// class accumulates the characters in a class.
	class        []rune
	rangePending bool

	// Repetition bounds.
	digits  []rune
	min     int
	haveMin bool
	repPos  int

	result Generator
}

// Compile compiles the template into a Generator.
//
// Any References are bound to the given Table, and any random choices
// draw from Sources given by the Table's SourceMaker.  The result is
// not stored in the Table, and it's not optimized.  See
// Table.Compile.
func Compile(template string, table *Table) (Generator, error) {
	if table == nil {
		table = NewTable()
	}

	c := &compiler{
		template: template,
		table:    table,
		frames:   []*frame{{}},
	}

	rs := []rune(template)
	for i, r := range rs {
		c.pos = i
		if err := c.process(r); err != nil {
			return nil, err
		}
	}
	c.pos = len(rs)
	if err := c.process(eoi); err != nil {
		return nil, err
	}

	return c.result, nil
}

func (c *compiler) errorf(pos int, format string, args ...interface{}) error {
	return &CompileError{
		Template: c.template,
		Pos:      pos,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// process handles one character, which might be handled in more than
// one state.  When a variable name ends, for example, the character
// that ended it is processed again in the restored state.
func (c *compiler) process(r rune) error {
	for {
		again, err := c.dispatch(r)
		if err != nil || !again {
			return err
		}
	}
}

func (c *compiler) dispatch(r rune) (bool, error) {
	switch c.state {
	case stateDefault:
		return false, c.inDefault(r)
	case stateClass:
		return c.inClass(r), nil
	case stateName:
		return c.inName(r), nil
	case stateRepetition:
		return false, c.inRepetition(r)
	case stateEscape:
		return c.inEscape(r), nil
	default:
		return false, c.errorf(c.pos, "internal error: unknown state %s", c.state)
	}
}

func (c *compiler) push(s state) {
	c.saved = append(c.saved, c.state)
	c.state = s
}

func (c *compiler) restore() {
	n := len(c.saved)
	if n == 0 {
		c.state = stateDefault
		return
	}
	c.state = c.saved[n-1]
	c.saved = c.saved[:n-1]
}

func (c *compiler) top() *frame {
	return c.frames[len(c.frames)-1]
}

// flush turns any pending literal text into a Literal.
func (c *compiler) flush() {
	if len(c.literal) == 0 {
		return
	}
	c.top().add(NewLiteral(string(c.literal)))
	c.literal = c.literal[:0]
}

// closeFrame pops the top frame and returns its branches as an
// Alternation.
func (c *compiler) closeFrame() Generator {
	f := c.top()
	c.frames = c.frames[:len(c.frames)-1]
	f.closeBranch()
	return NewAlternation(f.branches, c.table.source())
}

func (c *compiler) inDefault(r rune) error {
	switch r {
	case '(':
		c.flush()
		c.frames = append(c.frames, &frame{pos: c.pos})
		c.push(stateDefault)
	case '|':
		c.flush()
		c.top().closeBranch()
	case ')':
		c.flush()
		if len(c.frames) < 2 {
			return c.errorf(c.pos, "unmatched ')'")
		}
		alt := c.closeFrame()
		c.top().add(alt)
		c.restore()
	case eoi:
		c.flush()
		if 1 < len(c.frames) {
			return c.errorf(c.top().pos, "unclosed '('")
		}
		c.result = c.closeFrame()
	case '[':
		c.flush()
		c.class = nil
		c.rangePending = false
		c.push(stateClass)
	case '$':
		c.flush()
		c.name = c.name[:0]
		c.push(stateName)
	case '{':
		c.flush()
		c.digits = c.digits[:0]
		c.haveMin = false
		c.min = 0
		c.repPos = c.pos
		c.push(stateRepetition)
	case '\\':
		c.push(stateEscape)
	default:
		c.literal = append(c.literal, r)
	}
	return nil
}

// inClass returns true if the character should be processed again.
func (c *compiler) inClass(r rune) bool {
	switch {
	case r == ']' || r == eoi:
		if c.rangePending {
			// A trailing '-' is just a '-'.
			c.class = append(c.class, '-')
		}
		c.top().add(NewCharClass(c.class, c.table.source()))
		c.class = nil
		c.rangePending = false
		c.restore()
		return r == eoi
	case r == '\\':
		c.push(stateEscape)
	case r == '-' && 0 < len(c.class) && !c.rangePending:
		c.rangePending = true
	case c.rangePending:
		c.rangePending = false
		// An empty or backwards range adds nothing.
		for x := c.class[len(c.class)-1] + 1; x <= r; x++ {
			c.class = append(c.class, x)
		}
	default:
		c.class = append(c.class, r)
	}
	return false
}

func isNameChar(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r == '_'
}

// inName returns true if the character should be processed again.
func (c *compiler) inName(r rune) bool {
	if isNameChar(r) {
		c.name = append(c.name, r)
		return false
	}
	// A '$' without a name generates nothing.
	if 0 < len(c.name) {
		c.top().add(NewReference(string(c.name), c.table))
		c.name = c.name[:0]
	}
	c.restore()
	return true
}

func (c *compiler) bound() (int, error) {
	if len(c.digits) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(c.digits), 10, 32)
	if err != nil {
		return 0, c.errorf(c.pos, "bad repetition bound %q", string(c.digits))
	}
	c.digits = c.digits[:0]
	return int(n), nil
}

func (c *compiler) inRepetition(r rune) error {
	switch {
	case '0' <= r && r <= '9':
		c.digits = append(c.digits, r)
	case r == ',':
		if c.haveMin {
			return c.errorf(c.pos, "unexpected ',' in repetition")
		}
		n, err := c.bound()
		if err != nil {
			return err
		}
		c.min = n
		c.haveMin = true
	case r == '}':
		max, err := c.bound()
		if err != nil {
			return err
		}
		min := max
		if c.haveMin {
			min = c.min
		}
		if max < min {
			return c.errorf(c.repPos, "repetition minimum %d exceeds maximum %d", min, max)
		}
		f := c.top()
		n := len(f.current)
		if n == 0 {
			return c.errorf(c.repPos, "nothing to repeat")
		}
		f.current[n-1] = NewRepetition(f.current[n-1], min, max, c.table.source())
		c.restore()
	case r == eoi:
		return c.errorf(c.repPos, "unterminated repetition")
	default:
		return c.errorf(c.pos, "unexpected %q in repetition", r)
	}
	return nil
}

// inEscape takes the character literally in the state that the
// escape interrupted.  Returns true if the character should be
// processed again.
func (c *compiler) inEscape(r rune) bool {
	c.restore()
	if r == eoi {
		// A trailing backslash is just a backslash.
		c.escaped('\\')
		return true
	}
	c.escaped(r)
	return false
}

func (c *compiler) escaped(r rune) {
	switch c.state {
	case stateClass:
		c.class = append(c.class, r)
		c.rangePending = false
	default:
		c.literal = append(c.literal, r)
	}
}
