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

package sio

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Comcast/randodo/core"
	"github.com/Comcast/randodo/util"

	"github.com/gorilla/websocket"
)

// Firehose is an Emitter that forwards every Sample to all connected
// websocket clients.
//
// A client can also send a generator name as a text message to get a
// Sample just for itself.
type Firehose struct {
	// Table, if not nil, serves requests from clients.
	Table *core.UpdatableTable

	// MaxDepth is used when serving requests from clients.
	MaxDepth int

	// Buffer is the size of each client's queue.  When a queue is
	// full, Samples for that client are dropped.
	Buffer int

	Debug bool

	upgrader websocket.Upgrader
	conns    sync.Map
	count    int64
}

// NewFirehose makes a Firehose.
func NewFirehose(table *core.UpdatableTable) *Firehose {
	return &Firehose{
		Table:  table,
		Buffer: 32,
	}
}

func (f *Firehose) logf(format string, args ...interface{}) {
	if f.Debug {
		log.Printf("Firehose."+format, args...)
	}
}

// Clients returns the number of connected clients.
func (f *Firehose) Clients() int {
	n := 0
	f.conns.Range(func(k, v interface{}) bool {
		n++
		return true
	})
	return n
}

// Emit queues the Sample for every client.
func (f *Firehose) Emit(ctx context.Context, s *Sample) error {
	f.conns.Range(func(k, v interface{}) bool {
		c := v.(chan *Sample)
		select {
		case c <- s:
		default:
			log.Printf("Firehose client %v blocked", k)
		}
		return true
	})
	return nil
}

// ServeHTTP upgrades the connection to a websocket and then streams
// Samples until the client goes away.
func (f *Firehose) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Firehose upgrade error", err)
		return
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	size := f.Buffer
	if size <= 0 {
		size = 32
	}
	in := make(chan *Sample, size)

	id := strconv.FormatInt(atomic.AddInt64(&f.count, 1), 10) + "@" + r.RemoteAddr
	f.conns.Store(id, in)
	defer f.conns.Delete(id)
	f.logf("ServeHTTP %s connected", id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-in:
				if err := c.WriteMessage(websocket.TextMessage, []byte(util.JS(s))); err != nil {
					log.Printf("Firehose %s write error %v", id, err)
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			f.logf("ServeHTTP %s read error %v", id, err)
			break
		}
		name := strings.TrimSpace(string(message))
		if name == "" || f.Table == nil {
			continue
		}
		s, err := Generate(f.Table.Table(), name, f.MaxDepth)
		if err != nil {
			// Only the writer goroutine writes to c.
			s = &Sample{Name: name, Error: err.Error()}
		}
		select {
		case in <- s:
		default:
			log.Printf("Firehose client %v blocked", id)
		}
	}

	cancel()
	<-done
}
