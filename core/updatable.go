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
	"sync/atomic"
)

// UpdatableTable holds a Table that can be replaced at any time.
//
// Readers get whichever Table was current when they asked.  Since a
// Table's References point into that same Table, a reader never sees
// a mix of old and new definitions.
type UpdatableTable struct {
	table atomic.Pointer[Table]
}

// NewUpdatableTable makes one with the given initial Table, which can
// be changed later via SetTable.
func NewUpdatableTable(t *Table) *UpdatableTable {
	u := &UpdatableTable{}
	u.table.Store(t)
	return u
}

// SetTable atomically changes the underlying Table.
func (u *UpdatableTable) SetTable(t *Table) {
	u.table.Store(t)
}

// Table returns the current Table.
func (u *UpdatableTable) Table() *Table {
	return u.table.Load()
}
