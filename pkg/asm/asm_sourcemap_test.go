package asm

import (
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 2: Comment
LD A, 10        ; Line 3
                ; Line 4: Empty
LABEL:          ; Line 5: Label
ADD A, B        ; Line 6
.ORG 0x0010     ; Line 7: padding
HALT            ; Line 8
.WORD 0xFFF     ; Line 9
`
	_, sourceMap, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	tests := []struct {
		addr uint16
		line int
	}{
		{0x0000, 3},
		{0x0001, 6},
		{0x0010, 8},
		{0x0011, 9},
	}

	for _, tc := range tests {
		if got := sourceMap[tc.addr]; got != tc.line {
			t.Errorf("sourceMap[0x%04X] = %d; want %d", tc.addr, got, tc.line)
		}
	}
	if _, ok := sourceMap[0x0005]; ok {
		t.Errorf("padding words should not map to a line")
	}
}
