package ebpf

import (
	"fmt"
	"strconv"
)

// Disassemble renders the instruction as one line of assembly text. The
// textual form depends only on the opcode's operand-encoding class, no
// cross-instruction analysis happens here.
func (ix Instruction) Disassemble() (string, error) {
	switch ix.Op.class() {
	case fmtLoadImm64:
		return fmt.Sprintf("%s r%d, %d", ix.Op, ix.Dst, ix.Imm), nil

	case fmtLoadMem:
		return fmt.Sprintf("%s r%d, [r%d%s]", ix.Op, ix.Dst, ix.Src, offString(ix.Off)), nil

	case fmtStoreImm:
		return fmt.Sprintf("%s [r%d%s], %d", ix.Op, ix.Dst, offString(ix.Off), ix.Imm), nil

	case fmtStoreReg:
		return fmt.Sprintf("%s [r%d%s], r%d", ix.Op, ix.Dst, offString(ix.Off), ix.Src), nil

	case fmtUnary:
		return fmt.Sprintf("%s r%d", ix.Op, ix.Dst), nil

	case fmtEndian:
		// The historical convention for le/be concatenates mnemonic, bit
		// width and register without separators: "be32r1".
		switch ix.Imm {
		case 16, 32, 64:
			return fmt.Sprintf("%s%dr%d", ix.Op, ix.Imm, ix.Dst), nil
		}
		return "", fmt.Errorf("%s width must be 16, 32 or 64, got %d: %w", ix.Op, ix.Imm, ErrInvalidImmediate)

	case fmtAluImm:
		return fmt.Sprintf("%s r%d, %d", ix.Op, ix.Dst, ix.Imm), nil

	case fmtAluReg:
		return fmt.Sprintf("%s r%d, r%d", ix.Op, ix.Dst, ix.Src), nil

	case fmtJumpAlways:
		return fmt.Sprintf("%s %s", ix.Op, offString(ix.Off)), nil

	case fmtJumpImm:
		return fmt.Sprintf("%s r%d, %d, %s", ix.Op, ix.Dst, ix.Imm, offString(ix.Off)), nil

	case fmtJumpReg:
		return fmt.Sprintf("%s r%d, r%d, %s", ix.Op, ix.Dst, ix.Src, offString(ix.Off)), nil

	case fmtCallImm:
		return fmt.Sprintf("call %d", ix.Imm), nil

	case fmtCallReg:
		return fmt.Sprintf("call r%d", ix.Src), nil

	case fmtExit:
		return ix.Op.String(), nil
	}

	return "", fmt.Errorf("opcode 0x%02x: %w", uint8(ix.Op), ErrInvalidOpcode)
}

// DisassembleStream renders a decoded instruction sequence one line per
// instruction. Like DecodeStream it is permissive: rendering stops at the
// first instruction that cannot be disassembled.
func DisassembleStream(ixs []Instruction) []string {
	lines := make([]string, 0, len(ixs))
	for _, ix := range ixs {
		line, err := ix.Disassemble()
		if err != nil {
			break
		}

		lines = append(lines, line)
	}

	return lines
}

// offString renders a branch/memory offset with an explicit sign, "+4", "+0"
// or "-8".
func offString(off int16) string {
	if off < 0 {
		return strconv.Itoa(int(off))
	}

	return "+" + strconv.Itoa(int(off))
}
