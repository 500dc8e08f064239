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

package goja

import (
	"errors"
	"fmt"
)

// Source is a filter's code and the libraries it needs.
type Source struct {
	Code     string
	Requires []string
}

// ParseSource accepts either a string, which is just code, or a map
// with "code" and optional "requires", which can be a string or a
// list of strings.
func ParseSource(src interface{}) (*Source, error) {
	var m map[string]interface{}

	switch vv := src.(type) {
	case string:
		return &Source{Code: vv}, nil
	case map[string]interface{}:
		m = vv
	case map[interface{}]interface{}:
		// What yaml.v2 gives.
		m = make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, fmt.Errorf("bad source key (%T)", k)
			}
			m[s] = v
		}
	default:
		return nil, fmt.Errorf("bad Goja source (%T)", src)
	}

	code, is := m["code"].(string)
	if !is {
		return nil, errors.New("bad Goja filter code")
	}
	s := &Source{
		Code: code,
	}

	switch vv := m["requires"].(type) {
	case nil:
	case string:
		s.Requires = []string{vv}
	case []string:
		s.Requires = vv
	case []interface{}:
		for _, x := range vv {
			lib, is := x.(string)
			if !is {
				return nil, fmt.Errorf("bad library (%T)", x)
			}
			s.Requires = append(s.Requires, lib)
		}
	default:
		return nil, fmt.Errorf("bad requires (%T)", vv)
	}

	return s, nil
}

// Program returns the code, wrapped in a function, after the
// libraries' code.
func (s *Source) Program(libs []string) string {
	var acc string
	for _, lib := range libs {
		acc += lib + "\n"
	}
	return acc + "(function() {\n" + s.Code + "\n}());\n"
}
