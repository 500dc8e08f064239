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
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// LineError reports a problem with a line in a line-format file.
type LineError struct {
	// Line is the 1-based line number.
	Line   int
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *LineError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Reason
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type lineState int

const (
	lineClear lineState = iota
	lineName
	lineAfterName
	lineBeforeValue
	lineValue
)

func isSpace(c rune) bool {
	return c == ' ' || c == '\t'
}

// ParseLine parses a single line.
//
// A blank line or a comment returns an empty name and a nil error.
// The template is the rest of the line after the '=' and any
// following spaces.  Trailing spaces are part of the template.
func ParseLine(line string) (name, template string, err error) {
	var (
		state = lineClear
		acc   strings.Builder
	)

	line = strings.TrimRight(line, "\r\n")

	for i, c := range line {
		switch state {
		case lineClear:
			switch {
			case isSpace(c):
			case c == '#':
				return "", "", nil
			case c == '=':
				return "", "", &LineError{Reason: "missing variable name"}
			default:
				acc.WriteRune(c)
				state = lineName
			}
		case lineName:
			switch {
			case isSpace(c):
				state = lineAfterName
			case c == '=':
				state = lineBeforeValue
			default:
				acc.WriteRune(c)
			}
		case lineAfterName:
			switch {
			case isSpace(c):
			case c == '=':
				state = lineBeforeValue
			default:
				return "", "", &LineError{Reason: "unexpected chars after variable name"}
			}
		case lineBeforeValue:
			if !isSpace(c) {
				return acc.String(), line[i:], nil
			}
		}
	}

	if state == lineClear {
		return "", "", nil
	}

	return "", "", &LineError{Reason: "finished parsing line in an unexpected state"}
}

// ParseLines reads line-format definitions.
//
// The first bad line stops the parse and results in a *LineError.
func ParseLines(in io.Reader) (*Definitions, error) {
	var (
		ds = &Definitions{}
		s  = bufio.NewScanner(in)
		n  = 0
	)

	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for s.Scan() {
		n++
		name, template, err := ParseLine(s.Text())
		if err != nil {
			if le, is := err.(*LineError); is {
				le.Line = n
			}
			return nil, err
		}
		if name == "" {
			continue
		}
		d := ds.Add(name, template)
		d.Line = n
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

// ParseLinesBytes is ParseLines for a byte slice.
func ParseLinesBytes(bs []byte) (*Definitions, error) {
	return ParseLines(bytes.NewReader(bs))
}

// WriteLines writes definitions in the line format.
//
// Documentation and filters are dropped since the line format can't
// represent them.
func (ds *Definitions) WriteLines(w io.Writer) error {
	var buf bytes.Buffer
	if ds.Name != "" {
		buf.WriteString("# " + ds.Name + "\n\n")
	}
	for _, d := range ds.Defs {
		if d == nil {
			continue
		}
		if strings.ContainsAny(d.Template, "\r\n") {
			return &DefinitionError{Def: d, Reason: "template has a line break"}
		}
		if d.Template == "" || isSpace([]rune(d.Template)[0]) {
			return &DefinitionError{Def: d, Reason: "template can't be written in the line format"}
		}
		if strings.HasPrefix(d.Name, "#") || strings.IndexFunc(d.Name, func(r rune) bool { return isSpace(r) || r == '=' }) >= 0 {
			return &DefinitionError{Def: d, Reason: "name can't be written in the line format"}
		}
		buf.WriteString(d.Name + " = " + d.Template + "\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}
