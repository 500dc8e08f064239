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

package tools

import (
	"strconv"
	"strings"

	"github.com/Comcast/randodo/core"
)

const (
	literalSpecials = `\[]()|{}$`
	classSpecials   = `\]-`
)

func escapeRune(b *strings.Builder, r rune, specials string) {
	if strings.ContainsRune(specials, r) {
		b.WriteByte('\\')
	}
	b.WriteRune(r)
}

func isNameRune(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r == '_'
}

// Describe renders a compiled generator in the template syntax.
//
// Compiling the result gives a generator that produces the same
// language, though not necessarily the same tree.  Filters are
// ignored.
func Describe(gen core.Generator) string {
	var b strings.Builder
	// The compiler wraps every template in a group.
	if alt, is := gen.(*core.Alternation); is && len(alt.Branches) == 1 {
		gen = alt.Branches[0]
	}
	describe(&b, gen)
	return b.String()
}

func describe(b *strings.Builder, gen core.Generator) {
	switch g := gen.(type) {
	case *core.Literal:
		for _, r := range g.Value {
			escapeRune(b, r, literalSpecials)
		}
	case *core.CharClass:
		describeClass(b, g.Chars)
	case *core.Sequence:
		describeSequence(b, g.Gens)
	case *core.Alternation:
		b.WriteByte('(')
		for i, branch := range g.Branches {
			if 0 < i {
				b.WriteByte('|')
			}
			describe(b, branch)
		}
		b.WriteByte(')')
	case *core.Repetition:
		switch g.Gen.(type) {
		case *core.Alternation, *core.CharClass, *core.Reference, *core.Repetition, *core.Literal:
			describe(b, g.Gen)
		default:
			b.WriteByte('(')
			describe(b, g.Gen)
			b.WriteByte(')')
		}
		describeBounds(b, g.Min, g.Max)
	case *core.Reference:
		b.WriteString("$" + g.Name)
	case *core.Filtered:
		describe(b, g.Gen)
	}
}

func describeSequence(b *strings.Builder, gens []core.Generator) {
	var prev core.Generator
	for _, gen := range gens {
		switch g := gen.(type) {
		case *core.Literal:
			s := g.Value
			if _, is := prev.(*core.Reference); is && s != "" {
				// Keep the name from absorbing the literal.
				r := []rune(s)[0]
				if isNameRune(r) {
					b.WriteByte('\\')
					b.WriteRune(r)
					s = s[len(string(r)):]
				}
			}
			describe(b, core.NewLiteral(s))
		case *core.Repetition:
			_, afterLiteral := prev.(*core.Literal)
			_, afterReference := prev.(*core.Reference)
			_, ofLiteral := g.Gen.(*core.Literal)
			if (afterLiteral || afterReference) && ofLiteral {
				// Keep the repeated literal apart from what
				// precedes it.
				b.WriteByte('(')
				describe(b, g.Gen)
				b.WriteByte(')')
				describeBounds(b, g.Min, g.Max)
				break
			}
			describe(b, g)
		default:
			describe(b, g)
		}
		prev = gen
	}
}

func describeBounds(b *strings.Builder, min, max int) {
	b.WriteByte('{')
	b.WriteString(strconv.Itoa(min))
	if min != max {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(max))
	}
	b.WriteByte('}')
}

func describeClass(b *strings.Builder, chars []rune) {
	b.WriteByte('[')
	for i := 0; i < len(chars); {
		j := i
		for j+1 < len(chars) && chars[j+1] == chars[j]+1 {
			j++
		}
		// Escaped characters can't be range endpoints.
		plain := !strings.ContainsRune(classSpecials, chars[i]) && !strings.ContainsRune(classSpecials, chars[j])
		if 2 <= j-i && plain {
			escapeRune(b, chars[i], classSpecials)
			b.WriteByte('-')
			escapeRune(b, chars[j], classSpecials)
			i = j + 1
			continue
		}
		escapeRune(b, chars[i], classSpecials)
		i++
	}
	b.WriteByte(']')
}
