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

// Package goja provides a filter interpreter based on Goja, which is
// a Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
package goja

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/Comcast/randodo/core"

	"github.com/dop251/goja"
	"github.com/goccy/go-json"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja.
type Interpreter struct {
	// Testing exposes sleep().
	Testing bool

	// Libraries resolves the names in a source's "requires".
	// When nil, DefaultLibraries is used.
	Libraries Libraries
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) library(ctx context.Context, name string) (string, error) {
	if i.Libraries != nil {
		return i.Libraries(ctx, name)
	}
	return DefaultLibraries(ctx, name)
}

// Compile parses the source (see ParseSource), fetches any required
// libraries, and calls goja.Compile.
//
// Fetching a library can block.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	s, err := ParseSource(src)
	if err != nil {
		return nil, err
	}

	libs := make([]string, len(s.Requires))
	for n, name := range s.Requires {
		if libs[n], err = i.library(ctx, name); err != nil {
			return nil, err
		}
	}

	code := s.Program(libs)
	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, code)
	}
	return p, nil
}

// str exports the value, which must be a string.
func str(o *goja.Runtime, x interface{}) string {
	if v, is := x.(goja.Value); is {
		x = v.Export()
	}
	s, is := x.(string)
	if !is {
		panic(o.ToValue("not a string"))
	}
	return s
}

// runtime makes a runtime with everything bound at '_'.
func (i *Interpreter) runtime(text string, props map[string]interface{}) *goja.Runtime {
	o := goja.New()

	ps := make(map[string]interface{}, len(props))
	for k, v := range props {
		ps[k] = v
	}

	env := map[string]interface{}{
		"text":  text,
		"props": ps,
		"name":  ps["name"],
	}

	env["cronNext"] = func(x interface{}) string {
		c, err := cronexpr.Parse(str(o, x))
		if err != nil {
			panic(o.ToValue(err.Error()))
		}
		next := c.Next(time.Now())
		if next.IsZero() {
			return ""
		}
		return core.Timestamp(next)
	}

	env["esc"] = func(x interface{}) string {
		return url.QueryEscape(str(o, x))
	}

	env["log"] = func(x interface{}) interface{} {
		if v, is := x.(goja.Value); is {
			x = v.Export()
		}
		if js, err := json.Marshal(&x); err != nil {
			log.Printf("goja log (can't marshal: %s)", err)
		} else {
			log.Printf("goja log %s", js)
		}
		return x
	}

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	o.Set("_", env)

	return o
}

// Exec runs the filter.
//
// The code should return a string, which replaces the generated
// text.  Returning null or undefined gives an empty string.
//
// The runtime has these properties at _:
//
//    text: the generated text.
//    name: the name of the generator (if known).
//    props: a copy of the given properties.
//    cronNext(expr): the next time (RFC3339) for the cron expression.
//    esc(s): URL query-escape the given string.
//    log(x): log the given value as JSON.
//
// When Testing, sleep(ms) is also available (not at _).
//
// Execution stops with Interrupted when the context is done.
func (i *Interpreter) Exec(ctx context.Context, text string, props map[string]interface{}, src interface{}, compiled interface{}) (string, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return "", err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return "", fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	o := i.runtime(text, props)

	// If we cancel after RunProgram returns, the interrupt is
	// harmless.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return "", Interrupted
		}
		return "", err
	}

	switch vv := v.Export().(type) {
	case nil:
		return "", nil
	case string:
		return vv, nil
	default:
		return "", fmt.Errorf("filter returned %#v (%T), not a string", vv, vv)
	}
}
