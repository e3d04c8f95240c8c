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

package match

import (
	"fmt"

	"github.com/docrules/batchreplace/pkg/rule"
)

func ExampleFinder_FindMatches() {
	finder := NewFinder()
	spans := finder.FindMatches("catalog cat", rule.ReplaceRule{
		ID:            "animal",
		SearchText:    "cat",
		Enabled:       true,
		CaseSensitive: true,
		WholeWord:     true,
	})
	for _, sp := range spans {
		fmt.Printf("[%d,%d) %s\n", sp.Start, sp.End, sp.MatchedText)
	}
	// Output: [8,11) cat
}
