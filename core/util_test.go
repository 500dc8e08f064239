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
	"testing"
	"time"
)

func TestGensym(t *testing.T) {
	if s := Gensym(NewLCG(42), 8); len(s) != 8 {
		t.Fatal(s)
	}
	if Gensym(NewLCG(42), 8) != Gensym(NewLCG(42), 8) {
		t.Fatal("not deterministic")
	}
	if s := Gensym(NewLCG(1), 0); s != "" {
		t.Fatal(s)
	}
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2018, 3, 4, 5, 6, 7, 8, time.UTC)
	if s := Timestamp(at); s != "2018-03-04T05:06:07.000000008Z" {
		t.Fatal(s)
	}
	if _, err := time.Parse(time.RFC3339Nano, Timestamp(time.Time{})); err != nil {
		t.Fatal(err)
	}
}
