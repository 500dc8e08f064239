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

// Package interpreters gathers the standard filter interpreters.
package interpreters

import (
	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/interpreters/goja"
	"github.com/Comcast/randodo/interpreters/noop"
)

// Standard returns a new map with the standard interpreters.
//
// "goja" and "ecmascript" are the same Goja interpreter.
func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	g := goja.NewInterpreter()
	is["goja"] = g
	is["ecmascript"] = g

	is["noop"] = &noop.Interpreter{Silent: true}

	return is
}
