// Copyright 2025 docrules LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diagnose

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// 🧹 NormalizeWhitespace collapses every run of Unicode whitespace to a
// single space and trims the ends.
func NormalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// 🧹 Normalize produces the fully relaxed comparison form used by the fuzzy
// pass: full-width characters folded to half-width, NFKC composition, case
// folded, whitespace collapsed. Typed text and OCR'd CJK business text most
// often differ exactly along these axes.
func Normalize(s string) string {
	s = width.Fold.String(s)
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return NormalizeWhitespace(s)
}

// stripToDigits keeps only the decimal digits of s, with full-width digits
// folded first. Used for format comparisons on phone/date/amount fields.
func stripToDigits(s string) string {
	s = width.Fold.String(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
