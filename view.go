package bpfelf

import (
	"github.com/dylandreimerink/bpfelf/ebpf"
)

// View renders the program as a nested mapping of plain values suitable for
// serialization, JSON in particular. Enumerated fields render as their
// names, segment flags as their "R/W/X" form. A section entry's optional
// fields are left out entirely when absent: "ixs" only appears on a code
// section that decoded to at least one instruction, "utf8" only when the
// contents are valid text.
func (p *Program) View() map[string]interface{} {
	hdr := p.ElfHeader

	pad := make([]int, len(hdr.Pad))
	for i, b := range hdr.Pad {
		pad[i] = int(b)
	}

	phs := make([]map[string]interface{}, 0, len(p.ProgramHeaders))
	for _, ph := range p.ProgramHeaders {
		phs = append(phs, map[string]interface{}{
			"p_type":   ph.Type.String(),
			"p_flags":  ph.Flags.String(),
			"p_offset": ph.Off,
			"p_vaddr":  ph.Vaddr,
			"p_paddr":  ph.Paddr,
			"p_filesz": ph.Filesz,
			"p_memsz":  ph.Memsz,
			"p_align":  ph.Align,
		})
	}

	shs := make([]map[string]interface{}, 0, len(p.SectionHeaders))
	for _, sh := range p.SectionHeaders {
		shs = append(shs, map[string]interface{}{
			"sh_name":      sh.Name,
			"sh_type":      sh.Type.String(),
			"sh_flags":     sh.Flags,
			"sh_addr":      sh.Addr,
			"sh_offset":    sh.Off,
			"sh_size":      sh.Size,
			"sh_link":      sh.Link,
			"sh_info":      sh.Info,
			"sh_addralign": sh.Addralign,
			"sh_entsize":   sh.Entsize,
		})
	}

	entries := make([]map[string]interface{}, 0, len(p.SectionHeaderEntries))
	for _, e := range p.SectionHeaderEntries {
		// []byte would serialize as base64 under encoding/json, a plain
		// number array keeps the view readable.
		data := make([]int, len(e.Data))
		for i, b := range e.Data {
			data[i] = int(b)
		}

		entry := map[string]interface{}{
			"label":  e.Label,
			"offset": e.Offset,
			"data":   data,
		}
		if e.Label == codeSectionLabel && len(e.Instructions) > 0 {
			entry["ixs"] = ebpf.DisassembleStream(e.Instructions)
		}
		if e.UTF8 != "" {
			entry["utf8"] = e.UTF8
		}
		entries = append(entries, entry)
	}

	return map[string]interface{}{
		"elf_header": map[string]interface{}{
			"ei_magic":      string(hdr.Magic[:]),
			"ei_class":      hdr.Class,
			"ei_data":       hdr.Data,
			"ei_version":    hdr.IdentVersion,
			"ei_osabi":      hdr.OSABI,
			"ei_abiversion": hdr.ABIVersion,
			"ei_pad":        pad,
			"e_type":        hdr.Type,
			"e_machine":     hdr.Machine,
			"e_version":     hdr.Version,
			"e_entry":       hdr.Entry,
			"e_phoff":       hdr.PhOff,
			"e_shoff":       hdr.ShOff,
			"e_flags":       hdr.Flags,
			"e_ehsize":      hdr.EhSize,
			"e_phentsize":   hdr.PhEntSize,
			"e_phnum":       hdr.PhNum,
			"e_shentsize":   hdr.ShEntSize,
			"e_shnum":       hdr.ShNum,
			"e_shstrndx":    hdr.ShStrNdx,
		},
		"program_headers":        phs,
		"section_headers":        shs,
		"section_header_entries": entries,
	}
}
