// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package judge

import (
	"strings"
)

func hasX87(s string) bool {
	return strings.Contains(s, "st0") || strings.Contains(s, "st1")
}

// judgeX87 accounts for the ways the two
// dialects differ in printing the x87 stack
// registers, given the encoder and oracle
// renderings with size keywords removed.
func judgeX87(enc, dis string) Rule {
	if strings.Contains(enc, "st0,") && strings.ReplaceAll(enc, "st0,", "") == dis {
		return X87LeadingST0
	}

	if strings.Contains(enc, ",st0") {
		tmp := strings.ReplaceAll(enc, ",st0", "")
		if tmp == dis {
			return X87TrailingST0
		}

		if tmp == strings.ReplaceAll(dis, "to ", "") {
			return X87Direction
		}
	}

	if strings.Contains(dis, "st1") && strings.ReplaceAll(dis, " st1", "") == enc {
		return X87ImplicitST1
	}

	if strings.Contains(dis, ",st0") && strings.ReplaceAll(dis, ",st0", "") == enc {
		return X87DisassemblerST0
	}

	// The 16-bit forms of fsave and friends
	// have a "w" suffix in the encoder but an
	// o16 prefix in the disassembler.
	if strings.Contains(dis, "o16") && strings.ReplaceAll(dis, "o16 ", "") == strings.ReplaceAll(enc, "w [", " [") {
		return OperandSizeOverride
	}

	return NoMatch
}
