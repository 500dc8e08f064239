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

// Package core provides the template compiler and the generators it
// builds.
//
// A template is a small regex-like language:
//
//   literal text
//   [abc] [a-z]        one character from a class
//   (abc|def)          a group of alternatives
//   x{3} x{2,5} x{,4}  bounded repetition of the preceding generator
//   $name              a reference to another named template
//   \x                 x, literally
//
// Compile turns a template into a Generator tree.  A Table holds
// named trees so that a template can refer to others by name.  The
// references are resolved when a tree is evaluated, not when it's
// compiled, so definitions can appear in any order.
//
// To use this package, make a Table, call Table.Compile for each
// definition, Lookup a Generator, and then Generate into an Output as
// many times as you like.
//
// Every Generator that makes a random choice draws from its own
// Source, which it gets from the Table's SourceMaker at compile time.
// By default all nodes share one seeded Source.
package core
