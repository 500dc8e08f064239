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
	"io"
	"io/ioutil"
	"path/filepath"
	"regexp"
)

// Debug enables some logging.
var Debug = false

var inlinePattern = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// Inline replaces each '%inline("NAME")' with f(NAME).
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	var (
		acc  = make([]byte, 0, len(bs))
		last = 0
	)
	for _, m := range inlinePattern.FindAllSubmatchIndex(bs, -1) {
		name := string(bs[m[2]:m[3]])
		replacement, err := f(name)
		if err != nil {
			return nil, err
		}
		logf("inlining %s (%d bytes)", name, len(replacement))
		acc = append(acc, bs[last:m[0]]...)
		acc = append(acc, replacement...)
		last = m[1]
	}
	return append(acc, bs[last:]...), nil
}

// dirInliner reads inlined files relative to dir.
func dirInliner(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return ioutil.ReadFile(filepath.Join(dir, name))
	}
}

// ReadFileWithInlines is a replacement for ioutil.ReadFile that
// Inline()s files relative to the directory of the given filename.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, dirInliner(filepath.Dir(filename)))
}

// ReadAllWithInlines is a replacement for ioutil.ReadAll that
// Inline()s files relative to the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, dirInliner(dir))
}
