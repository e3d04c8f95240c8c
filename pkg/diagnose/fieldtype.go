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
	"regexp"
	"strings"
)

// 🏷️ FieldType is a best-effort semantic category for a rule's search text.
// It only selects more relevant issue messages; it never affects matching.
type FieldType string

const (
	FieldGeneric FieldType = "generic"
	FieldCompany FieldType = "company"
	FieldPhone   FieldType = "phone"
	FieldAmount  FieldType = "amount"
	FieldDate    FieldType = "date"
	FieldEmail   FieldType = "email"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// 2024-01-15, 2024/1/15, 2024年1月15日, 01/15/2024 and friends
	datePattern = regexp.MustCompile(`\d{4}\s*[年/.-]\s*\d{1,2}([月/.-]\s*\d{1,2}日?)?|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}`)
	// CN mobile numbers, optionally separated
	cnMobilePattern = regexp.MustCompile(`^1[3-9]\d[\s-]?\d{4}[\s-]?\d{4}$`)
)

var companySuffixes = []string{
	"有限公司", "股份公司", "公司", "集团", "株式会社",
	"inc", "inc.", "ltd", "ltd.", "llc", "corp", "corp.", "co.", "gmbh",
}

var amountMarkers = []string{"¥", "￥", "$", "€", "元", "万元", "人民币", "usd", "cny", "rmb"}

// 🏷️ ClassifyFieldType infers the semantic category of a search text. The
// keyword tables mirror how the surrounding product labels extracted
// variables (company, phone, amount, date, email), with everything else
// falling back to generic.
func ClassifyFieldType(searchText string) FieldType {
	s := strings.TrimSpace(Normalize(searchText))
	if s == "" {
		return FieldGeneric
	}

	if emailPattern.MatchString(s) {
		return FieldEmail
	}
	// The anchored mobile pattern runs first: a separated number like
	// "138-0000-0000" would otherwise satisfy the loose date pattern.
	if cnMobilePattern.MatchString(strings.ReplaceAll(s, " ", "")) {
		return FieldPhone
	}
	if datePattern.MatchString(s) {
		return FieldDate
	}

	digits := stripToDigits(s)
	if len(digits) >= 7 && len(digits) <= 15 && isMostlyPhoneChars(s) {
		return FieldPhone
	}

	for _, m := range amountMarkers {
		if strings.Contains(s, m) && len(digits) > 0 {
			return FieldAmount
		}
	}

	for _, suffix := range companySuffixes {
		if strings.HasSuffix(s, suffix) {
			return FieldCompany
		}
	}

	return FieldGeneric
}

// isMostlyPhoneChars reports whether s consists only of digits and common
// phone separators, so ordinary sentences with embedded numbers do not
// classify as phones.
func isMostlyPhoneChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return true
}
