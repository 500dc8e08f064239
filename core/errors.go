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

// These errors are user errors, not internal errors.

import (
	"errors"
	"strconv"
)

// CompileError occurs when a template can't be compiled.
type CompileError struct {
	// Name is the name of the definition (if known).
	Name string

	Template string

	// Pos is the index (in runes) of the offending character.
	// Pos equal to the length of the template means the problem
	// was found at the end of the input.
	Pos int

	Reason string
}

func (e *CompileError) Error() string {
	s := "template error at column " + strconv.Itoa(e.Pos+1) + ": " + e.Reason
	if e.Name != "" {
		s = `"` + e.Name + `": ` + s
	}
	return s
}

// UnknownGenerator occurs when a name isn't in a Table.
type UnknownGenerator struct {
	Name string
}

func (e *UnknownGenerator) Error() string {
	return `generator "` + e.Name + `" not found`
}

// InterpreterNotFound occurs when you try to Compile a FilterSource,
// and the required interpreter isn't in the given map of
// interpreters.
var InterpreterNotFound = errors.New("interpreter not found")
