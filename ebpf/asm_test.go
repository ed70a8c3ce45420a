package ebpf

import (
	"bytes"
	"embed"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

//go:embed asm_test.sbpfasm
var assembly embed.FS

const asmFilename = "asm_test.sbpfasm"

// This test ensures that the format accepted by the assembler matches the
// output of the disassembler: parsing the fixture, disassembling the result
// and stripping comments must reproduce the fixture.
func TestAssembleDisassembleSymmetry(t *testing.T) {
	fileContents, err := assembly.ReadFile(asmFilename)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := AssemblyToInstructions(asmFilename, bytes.NewReader(fileContents))
	if err != nil {
		t.Fatal(err)
	}

	var disassembled strings.Builder
	for _, ix := range parsed {
		line, err := ix.Disassemble()
		if err != nil {
			t.Fatal(err)
		}
		disassembled.WriteString(line + "\n")
	}

	var want strings.Builder
	for _, line := range strings.Split(string(fileContents), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		want.WriteString(line + "\n")
	}

	if want.String() != disassembled.String() {
		t.Errorf("assembly and disassembly not symmetric:\nwant:\n%s\ngot:\n%s", want.String(), disassembled.String())
	}
}

// Encoding the parsed fixture and decoding it back must reproduce the same
// instruction sequence.
func TestAssembleEncodeDecodeSymmetry(t *testing.T) {
	fileContents, err := assembly.ReadFile(asmFilename)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := AssemblyToInstructions(asmFilename, bytes.NewReader(fileContents))
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeStream(EncodeStream(parsed))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, parsed, decoded)
}

func TestAssembleOperandShapes(t *testing.T) {
	tests := []struct {
		asm  string
		want Instruction
	}{
		{"lddw r1, 0", Instruction{Op: OpLddw, Dst: 1}},
		{"ldxw r3, [r1+4]", Instruction{Op: OpLdxw, Dst: 3, Src: 1, Off: 4}},
		{"stb [r1+2], 5", Instruction{Op: OpStb, Dst: 1, Off: 2, Imm: 5}},
		{"stxb [r1-2], r3", Instruction{Op: OpStxb, Dst: 1, Src: 3, Off: -2}},
		{"neg64 r5", Instruction{Op: OpNeg64, Dst: 5}},
		{"be16r9", Instruction{Op: OpBe, Dst: 9, Imm: 16}},
		{"mov64 r0, -1", Instruction{Op: OpMov64Imm, Dst: 0, Imm: -1}},
		{"mov64 r0, r7", Instruction{Op: OpMov64Reg, Dst: 0, Src: 7}},
		{"ja -4", Instruction{Op: OpJa, Off: -4}},
		{"jslt r2, 7, +3", Instruction{Op: OpJsltImm, Dst: 2, Imm: 7, Off: 3}},
		{"jslt r2, r4, +3", Instruction{Op: OpJsltReg, Dst: 2, Src: 4, Off: 3}},
		{"call 1", Instruction{Op: OpCall, Imm: 1}},
		{"call r8", Instruction{Op: OpCallx, Src: 8}},
		{"exit", Instruction{Op: OpExit}},
	}

	for _, tt := range tests {
		t.Run(tt.asm, func(t *testing.T) {
			ixs, err := AssemblyToInstructions("test.sbpfasm", strings.NewReader(tt.asm+"\n"))
			assert.NoError(t, err)
			assert.Equal(t, []Instruction{tt.want}, ixs)
		})
	}
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := AssemblyToInstructions("test.sbpfasm", strings.NewReader("frob r1, 2\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestAssembleRejectsBadRegister(t *testing.T) {
	_, err := AssemblyToInstructions("test.sbpfasm", strings.NewReader("mov64 r16, 1\n"))
	if err == nil {
		t.Fatal("expected an error for a register index above 15")
	}
}
