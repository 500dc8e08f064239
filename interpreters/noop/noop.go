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

// Package noop provides a filter interpreter that returns the text
// without modification.
package noop

import (
	"context"
	"log"

	"github.com/Comcast/randodo/core"
)

func init() {
	core.DefaultInterpreters["noop"] = &Interpreter{Silent: true}
}

// Interpreter is a core.Interpreter that does nothing.
type Interpreter struct {
	// Silent, if false, will enable warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, text string, props map[string]interface{}, code interface{}, compiled interface{}) (string, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return text, nil
}
