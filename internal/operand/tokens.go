// Copyright 2023 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package operand

// generalRegisters contains the general
// purpose registers, indexed by width and
// register number.
var generalRegisters = [4][16]string{
	{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil", "r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"},
	{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di", "r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"},
	{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi", "r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"},
	{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi", "r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"},
}

var segmentRegisters = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}

// generalWidth maps each size to its row in
// generalRegisters. Sizes wider than 64 bits
// or without a width use the 64-bit names.
var generalWidth = [numSizes]int{
	Byte:  0,
	Word:  1,
	Dword: 2,
	Qword: 3,
	Oword: 3,
	Hword: 3,
	Auto:  3,
	Any:   3,
}

// immediates and memory qualify their operand
// with a size keyword where the dialect has
// one. Immediates wider than a quadword are
// left unqualified.
var (
	immediates = sizedTokens(Literal, Qword)
	memory     = sizedTokens("[rax+"+Literal+"]", Hword)
)

// sizedTokens returns the text for each size,
// prefixed with its keyword for sizes up to
// and including widest.
func sizedTokens(text string, widest Size) [numSizes]string {
	var tokens [numSizes]string
	for _, size := range Sizes {
		keyword := size.Keyword()
		if keyword == "" || size > widest {
			tokens[size] = text
			continue
		}

		tokens[size] = keyword + " " + text
	}

	return tokens
}

var vsib = [numSizes]string{
	Byte:  "[xmm2*2]",
	Word:  "[xmm2*2]",
	Dword: "[xmm2*2]",
	Qword: "[xmm2*2]",
	Oword: "[xmm2*2]",
	Hword: "[ymm2*2]",
	Auto:  "[xmm2*2]",
	Any:   "[xmm2*2]",
}

// vectorRegisters gives one register per
// vector width, so each width is visible in
// the disassembly. Sizes that have no vector
// form share a register.
var vectorRegisters = [numSizes]string{
	Byte:  "xmm5",
	Word:  "xmm5",
	Dword: "xmm0",
	Qword: "xmm1",
	Oword: "xmm2",
	Hword: "ymm3",
	Auto:  "xmm5",
	Any:   "xmm5",
}

// fixedTokens holds the tokens for classes
// that ignore the operand size.
var fixedTokens = [numClasses]string{
	FixedCR8:        "cr8",
	FixedST0:        "st0",
	Offset:          Literal,
	X87Register:     "st1",
	MMXRegister:     "mmx0",
	SegmentRegister: "es",
	ControlRegister: "cr8",
	DebugRegister:   "dr2",
	BoundRegister:   "bnd1",
	MMXOrMemory:     "mmx5",
}

// Token returns the concrete assembly text
// for the operand. Memory alternatives are
// always rendered as registers.
func (op Operand) Token() string {
	switch op.Class {
	case FixedRegister:
		return generalRegisters[generalWidth[op.Size]][op.Index]
	case LegacyRegister, RegisterOrMemory:
		return generalRegisters[generalWidth[op.Size]][0]
	case FixedSegment:
		return segmentRegisters[op.Index]
	case Immediate:
		return immediates[op.Size]
	case Memory:
		return memory[op.Size]
	case VSIB32, VSIB64:
		return vsib[op.Size]
	case SSERegister, SSEOrMemory:
		return vectorRegisters[op.Size]
	}

	if int(op.Class) < len(fixedTokens) {
		return fixedTokens[op.Class]
	}

	return ""
}
