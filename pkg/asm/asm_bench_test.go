package asm

import (
	"strings"
	"testing"
)

const smallProgram = `
.ORG 0x100
	LD A, 0xF
	LD XP, A
	LD X, 0x54
loop:
	LD MX, 0
	LD MX, 8
	JP loop
`

// mediumProgram clears display memory and beeps once per pass.
const mediumProgram = `
.ORG 0x100
	LD A, 4
	LD SPH, A
	LD A, 0
	LD SPL, A
main:
	LD A, 0xE
	LD XP, A
	LD X, 0x00
clear:
	LDPX MX, 0
	CP XL, 0xF
	JP NZ, clear
	CALL beep
	JP main
beep:
	PUSH XP
	PUSH XH
	PUSH XL
	LD A, 0xF
	LD XP, A
	LD X, 0x74
	LD MX, 2
	LD X, 0x54
	LD MX, 0
	LD MX, 8
	POP XL
	POP XH
	POP XP
	RET
`

var largeProgram = func() string {
	var b strings.Builder
	b.WriteString(".ORG 0x100\n")
	for i := 0; i < 200; i++ {
		b.WriteString(mediumProgram[strings.Index(mediumProgram, "main:"):])
		b.WriteString("\n")
	}
	return strings.NewReplacer("main:", "", "clear:", "", "beep:", "", "JP main", "NOP5", "JP NZ, clear", "NOP5", "CALL beep", "NOP5").Replace(b.String())
}()

func BenchmarkAssemble_Small(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, err := Assemble(smallProgram)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_Medium(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, err := Assemble(mediumProgram)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_Large(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, err := Assemble(largeProgram)
		if err != nil {
			b.Fatal(err)
		}
	}
}
