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

package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/sio"

	"github.com/goccy/go-json"
)

func complain(w http.ResponseWriter, x interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	js, err := json.Marshal(map[string]string{"error": fmt.Sprintf("%v", x)})
	if err != nil {
		log.Printf("complain Marshal error %v", err)
		return
	}
	w.Write(append(js, '\n'))
}

func reply(w http.ResponseWriter, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		complain(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(append(js, '\n')); err != nil {
		log.Printf("Service reply warning on Write(): %v", err)
	}
}

// status maps an error to an HTTP status.
func status(err error) int {
	var (
		ce *core.CompileError
		ug *core.UnknownGenerator
		le *defs.LineError
		de *defs.DefinitionError
	)
	switch {
	case errors.As(err, &ug), errors.Is(err, NotFound):
		return http.StatusNotFound
	case errors.As(err, &ce), errors.As(err, &le), errors.As(err, &de),
		errors.Is(err, core.InterpreterNotFound), errors.Is(err, BadName), errors.Is(err, TooMany):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad %s '%s'", name, s)
	}
	return n, nil
}

// Handler returns the service's HTTP API.
//
//   GET /generate?name=NAME&n=N      samples as JSON
//   GET /defs                        all definitions
//   GET /defs/NAME                   one definition
//   PUT /defs/NAME                   add or replace a definition
//   DELETE /defs/NAME                remove a definition
//   GET /samples/NAME?limit=N        recorded samples
//   GET /ws                          websocket firehose (if enabled)
func (s *Service) Handler(firehose *sio.Firehose) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/goroutines", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pprof.Lookup("goroutine").WriteTo(w, 1)
	}))

	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			complain(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			complain(w, "no name", http.StatusBadRequest)
			return
		}
		n, err := intParam(r, "n", 1)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		samples, err := s.Generate(r.Context(), name, n)
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, samples)
	})

	mux.HandleFunc("/defs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			complain(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ds, err := s.Defs(r.Context())
		if err != nil {
			complain(w, err, status(err))
			return
		}
		reply(w, ds)
	})

	mux.HandleFunc("/defs/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/defs/")
		if name == "" || strings.Contains(name, "/") {
			complain(w, BadName, http.StatusBadRequest)
			return
		}

		ctx := r.Context()

		switch r.Method {
		case http.MethodGet:
			ds, err := s.Defs(ctx)
			if err != nil {
				complain(w, err, status(err))
				return
			}
			d, have := ds.Find(name)
			if !have {
				complain(w, NotFound, http.StatusNotFound)
				return
			}
			reply(w, d)

		case http.MethodPut:
			js, err := ioutil.ReadAll(r.Body)
			if err != nil {
				complain(w, err, http.StatusBadRequest)
				return
			}
			if err := r.Body.Close(); err != nil {
				log.Printf("Service.Handler warning on Body.Close(): %v", err)
			}
			var d defs.Definition
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				if err = json.Unmarshal(js, &d); err != nil {
					complain(w, err, http.StatusBadRequest)
					return
				}
			} else {
				// A plain body is just the template.
				d.Template = string(js)
			}
			d.Name = name
			if err = s.PutDef(ctx, &d); err != nil {
				complain(w, err, status(err))
				return
			}
			reply(w, &d)

		case http.MethodDelete:
			if err := s.RemDef(ctx, name); err != nil {
				complain(w, err, status(err))
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			complain(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/samples/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/samples/")
		limit, err := intParam(r, "limit", 0)
		if err != nil {
			complain(w, err, http.StatusBadRequest)
			return
		}
		samples, err := s.Samples(r.Context(), name, limit)
		if err != nil {
			complain(w, err, status(err))
			return
		}
		if samples == nil {
			samples = []*sio.Sample{}
		}
		reply(w, samples)
	})

	if firehose != nil {
		mux.Handle("/ws", firehose)
	}

	return mux
}
