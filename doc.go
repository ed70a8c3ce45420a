// Package bpfelf decodes ELF objects carrying sBPF bytecode into a fully
// structured, round-trippable in-memory model, and renders that model as
// assembly text or as a structured document.
//
// The package is computation-only: it reads and writes in-memory byte slices,
// never files, and performs no relocation, symbol resolution or execution.
// Every structure decoded from a buffer re-encodes byte-for-byte, with the
// single documented exception that program header flag bits outside R/W/X are
// discarded on decode.
package bpfelf
