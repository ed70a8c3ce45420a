package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dylandreimerink/bpfelf"
	"github.com/dylandreimerink/bpfelf/ebpf"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bpfelf",
		Short: "Inspect ELF files carrying sBPF bytecode",
	}

	c.AddCommand(
		jsonCmd(),
		asmCmd(),
	)

	return c
}

func jsonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "json {elf file}",
		Short: "Decode an ELF file and print its structure as JSON",
		RunE:  printJSON,
		Args:  cobra.ExactArgs(1),
	}
}

func printJSON(cmd *cobra.Command, args []string) error {
	p, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(p.View(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func asmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asm {elf file}",
		Short: "Print the disassembly of an ELF file's code sections",
		RunE:  printAsm,
		Args:  cobra.ExactArgs(1),
	}
}

func printAsm(cmd *cobra.Command, args []string) error {
	p, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, entry := range p.SectionHeaderEntries {
		if len(entry.Instructions) == 0 {
			continue
		}
		for _, line := range ebpf.DisassembleStream(entry.Instructions) {
			fmt.Fprintln(out, line)
		}
	}

	return nil
}

func decodeFile(path string) (*bpfelf.Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", path, err)
	}

	p, err := bpfelf.DecodeProgram(b)
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %w", path, err)
	}

	return p, nil
}
