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

// Package bolt is a Storage implementation based on bbolt.
//
// Definitions live in the "defs" bucket keyed by name.  Samples live
// in a bucket per generator inside the "samples" bucket keyed by
// sequence number.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/Comcast/randodo/defs"
	"github.com/Comcast/randodo/sio"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

var (
	defsBucket    = []byte("defs")
	samplesBucket = []byte("samples")

	// DefaultMaxSamples is the default for Storage.MaxSamples.
	DefaultMaxSamples = 100

	NotOpen = errors.New("storage not open")
)

type Storage struct {
	Debug bool

	// MaxSamples is the number of Samples kept per generator.
	MaxSamples int

	filename string
	db       *bolt.DB
}

// storedDef is a Definition along with its position.
type storedDef struct {
	Seq uint64           `json:"seq"`
	Def *defs.Definition `json:"def"`
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		MaxSamples: DefaultMaxSamples,
		filename:   filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(defsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(samplesBucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return NotOpen
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) PutDef(ctx context.Context, d *defs.Definition) error {
	s.logf("PutDef %s", d.Name)
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(defsBucket)
		key := []byte(d.Name)

		sd := &storedDef{
			Def: d,
		}
		if bs := b.Get(key); bs != nil {
			var old storedDef
			if err := json.Unmarshal(bs, &old); err != nil {
				return err
			}
			sd.Seq = old.Seq
		} else {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			sd.Seq = seq
		}

		js, err := json.Marshal(sd)
		if err != nil {
			return err
		}
		return b.Put(key, js)
	})
}

func (s *Storage) RemDef(ctx context.Context, name string) error {
	s.logf("RemDef %s", name)
	if s.db == nil {
		return NotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(defsBucket).Delete([]byte(name))
	})
}

func (s *Storage) GetDefs(ctx context.Context) (*defs.Definitions, error) {
	if s.db == nil {
		return nil, NotOpen
	}
	sds := make([]*storedDef, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(defsBucket).ForEach(func(k, v []byte) error {
			var sd storedDef
			if err := json.Unmarshal(v, &sd); err != nil {
				return err
			}
			if sd.Def == nil {
				sd.Def = &defs.Definition{}
			}
			sd.Def.Name = string(k)
			sds = append(sds, &sd)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sds, func(i, j int) bool {
		return sds[i].Seq < sds[j].Seq
	})

	ds := &defs.Definitions{
		Defs: make([]*defs.Definition, len(sds)),
	}
	for i, sd := range sds {
		ds.Defs[i] = sd.Def
	}

	s.logf("GetDefs found %d", len(ds.Defs))

	return ds, nil
}

func itob(n uint64) []byte {
	bs := make([]byte, 8)
	binary.BigEndian.PutUint64(bs, n)
	return bs
}

func (s *Storage) AddSample(ctx context.Context, x *sio.Sample) error {
	if s.db == nil {
		return NotOpen
	}
	js, err := json.Marshal(x)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(samplesBucket).CreateBucketIfNotExists([]byte(x.Name))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err = b.Put(itob(seq), js); err != nil {
			return err
		}

		if s.MaxSamples <= 0 {
			return nil
		}

		n := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}

		// Drop the oldest.
		olds := make([][]byte, 0, 1)
		for k, _ := c.First(); k != nil && len(olds) < n-s.MaxSamples; k, _ = c.Next() {
			olds = append(olds, append([]byte(nil), k...))
		}
		for _, k := range olds {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) GetSamples(ctx context.Context, name string, limit int) ([]*sio.Sample, error) {
	if s.db == nil {
		return nil, NotOpen
	}
	var acc []*sio.Sample
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(samplesBucket).Bucket([]byte(name))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if 0 < limit && limit <= len(acc) {
				break
			}
			var x sio.Sample
			if err := json.Unmarshal(v, &x); err != nil {
				return err
			}
			acc = append(acc, &x)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(acc)-1; i < j; i, j = i+1, j-1 {
		acc[i], acc[j] = acc[j], acc[i]
	}

	return acc, nil
}
