// SPDX-License-Identifier: Apache-2.0

package credentials

import "fmt"

// CandidateKey identifies one physical occurrence of a value: the same value
// on the same line of the same file. Candidates produced by different rules
// for that occurrence share a key; the same value elsewhere does not.
// The zero value stands for a candidate without line data.
type CandidateKey struct {
	Path    string
	LineNum int
	Value   string
}

func NewCandidateKey(ld *LineData) CandidateKey {
	return CandidateKey{
		Path:    ld.Path,
		LineNum: ld.LineNum,
		Value:   ld.ValueOrEmpty(),
	}
}

func (k CandidateKey) String() string {
	return fmt.Sprintf("%s:%d:%q", k.Path, k.LineNum, k.Value)
}
