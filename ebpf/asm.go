package ebpf

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
)

var (
	asmLexer = stateful.MustSimple([]stateful.Rule{
		{Name: "Comment", Pattern: `(?:#)[^\n]*`, Action: nil},
		{Name: "Endian", Pattern: `(?:le|be)(?:16|32|64)r[0-9]{1,2}`, Action: nil},
		{Name: "Register", Pattern: `r[0-9]{1,2}`, Action: nil},
		{Name: "Number", Pattern: `[-+]?[0-9]+`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9]*`, Action: nil},
		{Name: "Punct", Pattern: `[\[\],]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r]+`, Action: nil},
		{Name: "Newline", Pattern: `\n`, Action: nil},
	})
	asmParser = participle.MustBuild(&asmFile{},
		participle.Lexer(asmLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(100),
	)
)

// AssemblyToInstructions parses assembly text in the format produced by
// Instruction.Disassemble, one instruction per line with optional '#'
// comments, back into instructions. The filename is only used in error
// messages.
//
// For every decodable instruction sequence, parsing its disassembly yields
// the same sequence back.
func AssemblyToInstructions(filename string, reader io.Reader) ([]Instruction, error) {
	ast := &asmFile{}
	if err := asmParser.Parse(filename, reader, ast); err != nil {
		return nil, fmt.Errorf("error while parsing: %w", err)
	}

	var instructions []Instruction
	for _, entry := range ast.Entries {
		if entry.Instruction == nil {
			continue
		}

		inst, err := entry.Instruction.ToInst()
		if err != nil {
			return nil, err
		}

		instructions = append(instructions, inst)
	}

	return instructions, nil
}

type asmFile struct {
	Entries []*asmEntry `parser:"@@*"`
}

type asmEntry struct {
	Instruction *asmInstruction `parser:"( @@ )? Newline*"`
}

// asmRegister captures a register token such as "r10".
type asmRegister uint8

func (r *asmRegister) Capture(values []string) error {
	i, err := strconv.Atoi(strings.Join(values, "")[1:])
	if err != nil {
		return err
	}
	if i > 15 {
		return fmt.Errorf("register index %d out of range 0-15", i)
	}

	*r = asmRegister(i)

	return nil
}

// asmInstruction is the union of all operand shapes. Productions that share
// a prefix are ordered longest first so the parser backtracks into the
// shorter form.
type asmInstruction struct {
	Endian   *asmEndian   `parser:"  @@"`
	LoadMem  *asmLoadMem  `parser:"| @@"`
	StoreImm *asmStoreImm `parser:"| @@"`
	StoreReg *asmStoreReg `parser:"| @@"`
	CallReg  *asmCallReg  `parser:"| @@"`
	CallImm  *asmCallImm  `parser:"| @@"`
	Exit     *asmExit     `parser:"| @@"`
	JumpReg  *asmJumpReg  `parser:"| @@"`
	JumpImm  *asmJumpImm  `parser:"| @@"`
	AluReg   *asmAluReg   `parser:"| @@"`
	AluImm   *asmAluImm   `parser:"| @@"`
	Unary    *asmUnary    `parser:"| @@"`
	Ja       *asmJa       `parser:"| @@"`
}

func (i *asmInstruction) ToInst() (Instruction, error) {
	switch {
	case i.Endian != nil:
		return i.Endian.ToInst()
	case i.LoadMem != nil:
		return i.LoadMem.ToInst()
	case i.StoreImm != nil:
		return i.StoreImm.ToInst()
	case i.StoreReg != nil:
		return i.StoreReg.ToInst()
	case i.CallReg != nil:
		return Instruction{Op: OpCallx, Src: uint8(i.CallReg.Src)}, nil
	case i.CallImm != nil:
		return Instruction{Op: OpCall, Imm: i.CallImm.Imm}, nil
	case i.Exit != nil:
		return Instruction{Op: OpExit}, nil
	case i.JumpReg != nil:
		return i.JumpReg.ToInst()
	case i.JumpImm != nil:
		return i.JumpImm.ToInst()
	case i.AluReg != nil:
		return i.AluReg.ToInst()
	case i.AluImm != nil:
		return i.AluImm.ToInst()
	case i.Unary != nil:
		return i.Unary.ToInst()
	case i.Ja != nil:
		return i.Ja.ToInst()
	}

	return Instruction{}, fmt.Errorf("empty instruction")
}

// Reverse mnemonic tables, one per operand shape, derived from the same
// opcode table the decoder validates against.
var (
	aluImmOpcodes   = map[string]Opcode{}
	aluRegOpcodes   = map[string]Opcode{}
	jumpImmOpcodes  = map[string]Opcode{}
	jumpRegOpcodes  = map[string]Opcode{}
	loadMemOpcodes  = map[string]Opcode{}
	storeImmOpcodes = map[string]Opcode{}
	storeRegOpcodes = map[string]Opcode{}
	unaryOpcodes    = map[string]Opcode{}
)

func init() {
	for op, name := range opcodeNames {
		switch op.class() {
		case fmtAluImm, fmtLoadImm64:
			aluImmOpcodes[name] = op
		case fmtAluReg:
			aluRegOpcodes[name] = op
		case fmtJumpImm:
			jumpImmOpcodes[name] = op
		case fmtJumpReg:
			jumpRegOpcodes[name] = op
		case fmtLoadMem:
			loadMemOpcodes[name] = op
		case fmtStoreImm:
			storeImmOpcodes[name] = op
		case fmtStoreReg:
			storeRegOpcodes[name] = op
		case fmtUnary:
			unaryOpcodes[name] = op
		}
	}
}

func lookupMnemonic(table map[string]Opcode, mnemonic string) (Opcode, error) {
	op, found := table[mnemonic]
	if !found {
		return 0, fmt.Errorf("mnemonic '%s' does not take this operand form: %w", mnemonic, ErrInvalidOpcode)
	}

	return op, nil
}

var endianRegexp = regexp.MustCompile(`^(le|be)(16|32|64)r([0-9]{1,2})$`)

// asmEndian matches the concatenated endian-conversion form, "be32r1".
type asmEndian struct {
	Token string `parser:"@Endian"`
}

func (e *asmEndian) ToInst() (Instruction, error) {
	parts := endianRegexp.FindStringSubmatch(e.Token)
	if parts == nil {
		return Instruction{}, fmt.Errorf("malformed endian conversion '%s'", e.Token)
	}

	op := OpLe
	if parts[1] == "be" {
		op = OpBe
	}

	// Widths matched by the token pattern are always valid integers.
	width, _ := strconv.Atoi(parts[2])
	dst, err := strconv.Atoi(parts[3])
	if err != nil || dst > 15 {
		return Instruction{}, fmt.Errorf("register index r%s out of range 0-15", parts[3])
	}

	return Instruction{Op: op, Dst: uint8(dst), Imm: int64(width)}, nil
}

type asmLoadMem struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register ','"`
	Src      asmRegister `parser:"'[' @Register"`
	Off      int16       `parser:"@Number ']'"`
}

func (l *asmLoadMem) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(loadMemOpcodes, l.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(l.Dst), Src: uint8(l.Src), Off: l.Off}, nil
}

type asmStoreImm struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"'[' @Register"`
	Off      int16       `parser:"@Number ']' ','"`
	Imm      int64       `parser:"@Number"`
}

func (s *asmStoreImm) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(storeImmOpcodes, s.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(s.Dst), Off: s.Off, Imm: s.Imm}, nil
}

type asmStoreReg struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"'[' @Register"`
	Off      int16       `parser:"@Number ']' ','"`
	Src      asmRegister `parser:"@Register"`
}

func (s *asmStoreReg) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(storeRegOpcodes, s.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(s.Dst), Src: uint8(s.Src), Off: s.Off}, nil
}

type asmCallImm struct {
	Imm int64 `parser:"'call' @Number"`
}

type asmCallReg struct {
	Src asmRegister `parser:"'call' @Register"`
}

type asmExit struct {
	Mnemonic string `parser:"@'exit'"`
}

type asmJumpImm struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register ','"`
	Imm      int64       `parser:"@Number ','"`
	Off      int16       `parser:"@Number"`
}

func (j *asmJumpImm) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(jumpImmOpcodes, j.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(j.Dst), Off: j.Off, Imm: j.Imm}, nil
}

type asmJumpReg struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register ','"`
	Src      asmRegister `parser:"@Register ','"`
	Off      int16       `parser:"@Number"`
}

func (j *asmJumpReg) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(jumpRegOpcodes, j.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(j.Dst), Src: uint8(j.Src), Off: j.Off}, nil
}

type asmAluImm struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register ','"`
	Imm      int64       `parser:"@Number"`
}

func (a *asmAluImm) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(aluImmOpcodes, a.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(a.Dst), Imm: a.Imm}, nil
}

type asmAluReg struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register ','"`
	Src      asmRegister `parser:"@Register"`
}

func (a *asmAluReg) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(aluRegOpcodes, a.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(a.Dst), Src: uint8(a.Src)}, nil
}

type asmUnary struct {
	Mnemonic string      `parser:"@Ident"`
	Dst      asmRegister `parser:"@Register"`
}

func (u *asmUnary) ToInst() (Instruction, error) {
	op, err := lookupMnemonic(unaryOpcodes, u.Mnemonic)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{Op: op, Dst: uint8(u.Dst)}, nil
}

type asmJa struct {
	Mnemonic string `parser:"@'ja'"`
	Off      int16  `parser:"@Number"`
}

func (j *asmJa) ToInst() (Instruction, error) {
	return Instruction{Op: OpJa, Off: j.Off}, nil
}
