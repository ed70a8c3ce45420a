package bpfelf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewShape(t *testing.T) {
	p, err := DecodeProgram(mustHex(t, programFixture))
	assert.NoError(t, err)

	v := p.View()

	hdr, ok := v["elf_header"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, "\x7fELF", hdr["ei_magic"])
		assert.Equal(t, uint16(0xf7), hdr["e_machine"])
	}

	phs, ok := v["program_headers"].([]map[string]interface{})
	if assert.True(t, ok) && assert.Len(t, phs, 3) {
		assert.Equal(t, "PT_LOAD", phs[0]["p_type"])
		assert.Equal(t, "R/*/X", phs[0]["p_flags"])
	}

	shs, ok := v["section_headers"].([]map[string]interface{})
	if assert.True(t, ok) && assert.Len(t, shs, 6) {
		assert.Equal(t, "SHT_NULL", shs[0]["sh_type"])
		assert.Equal(t, "SHT_PROGBITS", shs[1]["sh_type"])
	}

	entries, ok := v["section_header_entries"].([]map[string]interface{})
	if assert.True(t, ok) && assert.Len(t, entries, 6) {
		text := entries[1]
		assert.Equal(t, ".text\x00", text["label"])
		assert.Equal(t, []string{
			"ldxdw r2, [r1+160]",
			"ldxdw r1, [r1+10520]",
			"mov64 r0, 1",
			"jgt r1, r2, +1",
			"mov64 r0, 0",
			"exit",
		}, text["ixs"])

		// The null section has no bytecode and no text, both optional
		// keys stay out of the view.
		_, hasIxs := entries[0]["ixs"]
		assert.False(t, hasIxs)

		// The bytecode is not valid UTF-8.
		_, hasUTF8 := entries[1]["utf8"]
		assert.False(t, hasUTF8)

		_, hasUTF8 = entries[5]["utf8"]
		assert.True(t, hasUTF8)
	}
}

func TestViewMarshalsAsJSON(t *testing.T) {
	p, err := DecodeProgram(mustHex(t, programFixture))
	assert.NoError(t, err)

	out, err := json.Marshal(p.View())
	assert.NoError(t, err)
	assert.Contains(t, string(out), `"PT_LOAD"`)
	assert.Contains(t, string(out), `"mov64 r0, 1"`)
}
