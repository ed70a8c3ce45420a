package ebpf

import (
	"fmt"
)

// Opcode is the single byte identifying an instruction's operation and
// operand-encoding class. The set below is the sBPF (Solana BPF) dialect:
// the Linux eBPF base set minus socket-buffer loads and atomics, plus the
// wide multiply/divide family that replaces the 32-bit jump class.
//
// Every defined code-point is its own constant. Decode validation and
// mnemonic rendering both run off the opcodeNames table so they cannot
// drift apart.
type Opcode uint8

// Wide immediate load. The only instruction occupying two 8-byte slots.
const OpLddw Opcode = 0x18

// Memory loads (register-indexed).
const (
	OpLdxw  Opcode = 0x61 // load word
	OpLdxh  Opcode = 0x69 // load half-word
	OpLdxb  Opcode = 0x71 // load byte
	OpLdxdw Opcode = 0x79 // load double-word
)

// Memory stores of an immediate value. Deprecated in SBPFv2 but still decoded.
const (
	OpStw  Opcode = 0x62
	OpSth  Opcode = 0x6a
	OpStb  Opcode = 0x72
	OpStdw Opcode = 0x7a
)

// Memory stores of a source register.
const (
	OpStxw  Opcode = 0x63
	OpStxh  Opcode = 0x6b
	OpStxb  Opcode = 0x73
	OpStxdw Opcode = 0x7b
)

// 32-bit ALU, immediate operand.
const (
	OpAdd32Imm  Opcode = 0x04
	OpSub32Imm  Opcode = 0x14
	OpMul32Imm  Opcode = 0x24
	OpDiv32Imm  Opcode = 0x34
	OpOr32Imm   Opcode = 0x44
	OpAnd32Imm  Opcode = 0x54
	OpLsh32Imm  Opcode = 0x64
	OpRsh32Imm  Opcode = 0x74
	OpMod32Imm  Opcode = 0x94
	OpXor32Imm  Opcode = 0xa4
	OpMov32Imm  Opcode = 0xb4
	OpArsh32Imm Opcode = 0xc4
)

// 32-bit ALU, register operand.
const (
	OpAdd32Reg  Opcode = 0x0c
	OpSub32Reg  Opcode = 0x1c
	OpMul32Reg  Opcode = 0x2c
	OpDiv32Reg  Opcode = 0x3c
	OpOr32Reg   Opcode = 0x4c
	OpAnd32Reg  Opcode = 0x5c
	OpLsh32Reg  Opcode = 0x6c
	OpRsh32Reg  Opcode = 0x7c
	OpMod32Reg  Opcode = 0x9c
	OpXor32Reg  Opcode = 0xac
	OpMov32Reg  Opcode = 0xbc
	OpArsh32Reg Opcode = 0xcc
)

// 64-bit ALU, immediate operand.
const (
	OpAdd64Imm  Opcode = 0x07
	OpSub64Imm  Opcode = 0x17
	OpMul64Imm  Opcode = 0x27
	OpDiv64Imm  Opcode = 0x37
	OpOr64Imm   Opcode = 0x47
	OpAnd64Imm  Opcode = 0x57
	OpLsh64Imm  Opcode = 0x67
	OpRsh64Imm  Opcode = 0x77
	OpMod64Imm  Opcode = 0x97
	OpXor64Imm  Opcode = 0xa7
	OpMov64Imm  Opcode = 0xb7
	OpArsh64Imm Opcode = 0xc7
	OpHor64Imm  Opcode = 0xf7 // high-or, sBPF only, no register form
)

// 64-bit ALU, register operand.
const (
	OpAdd64Reg  Opcode = 0x0f
	OpSub64Reg  Opcode = 0x1f
	OpMul64Reg  Opcode = 0x2f
	OpDiv64Reg  Opcode = 0x3f
	OpOr64Reg   Opcode = 0x4f
	OpAnd64Reg  Opcode = 0x5f
	OpLsh64Reg  Opcode = 0x6f
	OpRsh64Reg  Opcode = 0x7f
	OpMod64Reg  Opcode = 0x9f
	OpXor64Reg  Opcode = 0xaf
	OpMov64Reg  Opcode = 0xbf
	OpArsh64Reg Opcode = 0xcf
)

// Unary negate.
const (
	OpNeg32 Opcode = 0x84
	OpNeg64 Opcode = 0x87
)

// Endianness conversion. The bit width lives in the immediate (16, 32 or 64),
// not in the opcode.
const (
	OpLe Opcode = 0xd4
	OpBe Opcode = 0xdc
)

// sBPF wide multiply/divide family. These live in what Linux eBPF uses as
// the 32-bit jump class, which sBPF repurposed.
const (
	OpUhmul64Imm Opcode = 0x36
	OpUhmul64Reg Opcode = 0x3e
	OpUdiv32Imm  Opcode = 0x46
	OpUdiv32Reg  Opcode = 0x4e
	OpUdiv64Imm  Opcode = 0x56
	OpUdiv64Reg  Opcode = 0x5e
	OpUrem32Imm  Opcode = 0x66
	OpUrem32Reg  Opcode = 0x6e
	OpUrem64Imm  Opcode = 0x76
	OpUrem64Reg  Opcode = 0x7e
	OpLmul32Imm  Opcode = 0x86
	OpLmul32Reg  Opcode = 0x8e
	OpLmul64Imm  Opcode = 0x96
	OpLmul64Reg  Opcode = 0x9e
	OpShmul64Imm Opcode = 0xb6
	OpShmul64Reg Opcode = 0xbe
	OpSdiv32Imm  Opcode = 0xc6
	OpSdiv32Reg  Opcode = 0xce
	OpSdiv64Imm  Opcode = 0xd6
	OpSdiv64Reg  Opcode = 0xde
	OpSrem32Imm  Opcode = 0xe6
	OpSrem32Reg  Opcode = 0xee
	OpSrem64Imm  Opcode = 0xf6
	OpSrem64Reg  Opcode = 0xfe
)

// Jumps.
const (
	OpJa      Opcode = 0x05
	OpJeqImm  Opcode = 0x15
	OpJeqReg  Opcode = 0x1d
	OpJgtImm  Opcode = 0x25
	OpJgtReg  Opcode = 0x2d
	OpJgeImm  Opcode = 0x35
	OpJgeReg  Opcode = 0x3d
	OpJsetImm Opcode = 0x45
	OpJsetReg Opcode = 0x4d
	OpJneImm  Opcode = 0x55
	OpJneReg  Opcode = 0x5d
	OpJsgtImm Opcode = 0x65
	OpJsgtReg Opcode = 0x6d
	OpJsgeImm Opcode = 0x75
	OpJsgeReg Opcode = 0x7d
	OpJltImm  Opcode = 0xa5
	OpJltReg  Opcode = 0xad
	OpJleImm  Opcode = 0xb5
	OpJleReg  Opcode = 0xbd
	OpJsltImm Opcode = 0xc5
	OpJsltReg Opcode = 0xcd
	OpJsleImm Opcode = 0xd5
	OpJsleReg Opcode = 0xdd
)

// Calls and exit.
const (
	OpCall  Opcode = 0x85
	OpCallx Opcode = 0x8d
	OpExit  Opcode = 0x95
)

// opcodeNames is the single source of truth for which opcodes exist and how
// they render. Immediate and register forms of the same operation share a
// mnemonic, the operand shape disambiguates them in assembly text.
var opcodeNames = map[Opcode]string{
	OpLddw: "lddw",

	OpLdxw: "ldxw", OpLdxh: "ldxh", OpLdxb: "ldxb", OpLdxdw: "ldxdw",
	OpStw: "stw", OpSth: "sth", OpStb: "stb", OpStdw: "stdw",
	OpStxw: "stxw", OpStxh: "stxh", OpStxb: "stxb", OpStxdw: "stxdw",

	OpAdd32Imm: "add32", OpSub32Imm: "sub32", OpMul32Imm: "mul32",
	OpDiv32Imm: "div32", OpOr32Imm: "or32", OpAnd32Imm: "and32",
	OpLsh32Imm: "lsh32", OpRsh32Imm: "rsh32", OpMod32Imm: "mod32",
	OpXor32Imm: "xor32", OpMov32Imm: "mov32", OpArsh32Imm: "arsh32",

	OpAdd32Reg: "add32", OpSub32Reg: "sub32", OpMul32Reg: "mul32",
	OpDiv32Reg: "div32", OpOr32Reg: "or32", OpAnd32Reg: "and32",
	OpLsh32Reg: "lsh32", OpRsh32Reg: "rsh32", OpMod32Reg: "mod32",
	OpXor32Reg: "xor32", OpMov32Reg: "mov32", OpArsh32Reg: "arsh32",

	OpAdd64Imm: "add64", OpSub64Imm: "sub64", OpMul64Imm: "mul64",
	OpDiv64Imm: "div64", OpOr64Imm: "or64", OpAnd64Imm: "and64",
	OpLsh64Imm: "lsh64", OpRsh64Imm: "rsh64", OpMod64Imm: "mod64",
	OpXor64Imm: "xor64", OpMov64Imm: "mov64", OpArsh64Imm: "arsh64",
	OpHor64Imm: "hor64",

	OpAdd64Reg: "add64", OpSub64Reg: "sub64", OpMul64Reg: "mul64",
	OpDiv64Reg: "div64", OpOr64Reg: "or64", OpAnd64Reg: "and64",
	OpLsh64Reg: "lsh64", OpRsh64Reg: "rsh64", OpMod64Reg: "mod64",
	OpXor64Reg: "xor64", OpMov64Reg: "mov64", OpArsh64Reg: "arsh64",

	OpNeg32: "neg32", OpNeg64: "neg64",
	OpLe: "le", OpBe: "be",

	OpUhmul64Imm: "uhmul64", OpUhmul64Reg: "uhmul64",
	OpUdiv32Imm: "udiv32", OpUdiv32Reg: "udiv32",
	OpUdiv64Imm: "udiv64", OpUdiv64Reg: "udiv64",
	OpUrem32Imm: "urem32", OpUrem32Reg: "urem32",
	OpUrem64Imm: "urem64", OpUrem64Reg: "urem64",
	OpLmul32Imm: "lmul32", OpLmul32Reg: "lmul32",
	OpLmul64Imm: "lmul64", OpLmul64Reg: "lmul64",
	OpShmul64Imm: "shmul64", OpShmul64Reg: "shmul64",
	OpSdiv32Imm: "sdiv32", OpSdiv32Reg: "sdiv32",
	OpSdiv64Imm: "sdiv64", OpSdiv64Reg: "sdiv64",
	OpSrem32Imm: "srem32", OpSrem32Reg: "srem32",
	OpSrem64Imm: "srem64", OpSrem64Reg: "srem64",

	OpJa:      "ja",
	OpJeqImm:  "jeq",
	OpJeqReg:  "jeq",
	OpJgtImm:  "jgt",
	OpJgtReg:  "jgt",
	OpJgeImm:  "jge",
	OpJgeReg:  "jge",
	OpJsetImm: "jset",
	OpJsetReg: "jset",
	OpJneImm:  "jne",
	OpJneReg:  "jne",
	OpJsgtImm: "jsgt",
	OpJsgtReg: "jsgt",
	OpJsgeImm: "jsge",
	OpJsgeReg: "jsge",
	OpJltImm:  "jlt",
	OpJltReg:  "jlt",
	OpJleImm:  "jle",
	OpJleReg:  "jle",
	OpJsltImm: "jslt",
	OpJsltReg: "jslt",
	OpJsleImm: "jsle",
	OpJsleReg: "jsle",

	OpCall:  "call",
	OpCallx: "callx",
	OpExit:  "exit",
}

func (op Opcode) String() string {
	if name, found := opcodeNames[op]; found {
		return name
	}

	return fmt.Sprintf("invalid(0x%02x)", uint8(op))
}

// LookupOpcode resolves a raw opcode byte against the defined opcode table.
func LookupOpcode(b uint8) (Opcode, error) {
	op := Opcode(b)
	if _, found := opcodeNames[op]; !found {
		return 0, fmt.Errorf("opcode 0x%02x: %w", b, ErrInvalidOpcode)
	}

	return op, nil
}

// fmtClass is the operand-encoding class an opcode belongs to. It decides the
// textual form of a disassembled instruction and, in reverse, which grammar
// production assembles back into which opcode.
type fmtClass uint8

const (
	fmtNone fmtClass = iota
	fmtLoadImm64
	fmtLoadMem
	fmtStoreImm
	fmtStoreReg
	fmtUnary
	fmtEndian
	fmtAluImm
	fmtAluReg
	fmtJumpAlways
	fmtJumpImm
	fmtJumpReg
	fmtCallImm
	fmtCallReg
	fmtExit
)

func (op Opcode) class() fmtClass {
	switch op {
	case OpLddw:
		return fmtLoadImm64

	case OpLdxw, OpLdxh, OpLdxb, OpLdxdw:
		return fmtLoadMem

	case OpStw, OpSth, OpStb, OpStdw:
		return fmtStoreImm

	case OpStxw, OpStxh, OpStxb, OpStxdw:
		return fmtStoreReg

	case OpNeg32, OpNeg64:
		return fmtUnary

	case OpLe, OpBe:
		return fmtEndian

	case OpAdd32Imm, OpSub32Imm, OpMul32Imm, OpDiv32Imm, OpOr32Imm, OpAnd32Imm,
		OpLsh32Imm, OpRsh32Imm, OpMod32Imm, OpXor32Imm, OpMov32Imm, OpArsh32Imm,
		OpAdd64Imm, OpSub64Imm, OpMul64Imm, OpDiv64Imm, OpOr64Imm, OpAnd64Imm,
		OpLsh64Imm, OpRsh64Imm, OpMod64Imm, OpXor64Imm, OpMov64Imm, OpArsh64Imm,
		OpHor64Imm,
		OpUhmul64Imm, OpUdiv32Imm, OpUdiv64Imm, OpUrem32Imm, OpUrem64Imm,
		OpLmul32Imm, OpLmul64Imm, OpShmul64Imm, OpSdiv32Imm, OpSdiv64Imm,
		OpSrem32Imm, OpSrem64Imm:
		return fmtAluImm

	case OpAdd32Reg, OpSub32Reg, OpMul32Reg, OpDiv32Reg, OpOr32Reg, OpAnd32Reg,
		OpLsh32Reg, OpRsh32Reg, OpMod32Reg, OpXor32Reg, OpMov32Reg, OpArsh32Reg,
		OpAdd64Reg, OpSub64Reg, OpMul64Reg, OpDiv64Reg, OpOr64Reg, OpAnd64Reg,
		OpLsh64Reg, OpRsh64Reg, OpMod64Reg, OpXor64Reg, OpMov64Reg, OpArsh64Reg,
		OpUhmul64Reg, OpUdiv32Reg, OpUdiv64Reg, OpUrem32Reg, OpUrem64Reg,
		OpLmul32Reg, OpLmul64Reg, OpShmul64Reg, OpSdiv32Reg, OpSdiv64Reg,
		OpSrem32Reg, OpSrem64Reg:
		return fmtAluReg

	case OpJa:
		return fmtJumpAlways

	case OpJeqImm, OpJgtImm, OpJgeImm, OpJsetImm, OpJneImm, OpJsgtImm,
		OpJsgeImm, OpJltImm, OpJleImm, OpJsltImm, OpJsleImm:
		return fmtJumpImm

	case OpJeqReg, OpJgtReg, OpJgeReg, OpJsetReg, OpJneReg, OpJsgtReg,
		OpJsgeReg, OpJltReg, OpJleReg, OpJsltReg, OpJsleReg:
		return fmtJumpReg

	case OpCall:
		return fmtCallImm

	case OpCallx:
		return fmtCallReg

	case OpExit:
		return fmtExit
	}

	return fmtNone
}
