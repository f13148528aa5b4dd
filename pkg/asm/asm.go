// Package asm assembles E0C6S46 source into 12-bit program words.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gotama/pkg/cpu"
)

// Operand words that can never be labels.
var reserved = map[string]bool{
	"A": true, "B": true, "MX": true, "MY": true,
	"X": true, "Y": true, "XP": true, "XH": true, "XL": true,
	"YP": true, "YH": true, "YL": true,
	"SP": true, "SPH": true, "SPL": true, "F": true,
	"C": true, "NC": true, "Z": true, "NZ": true,
}

var registers = map[string]uint16{"A": 0, "B": 1, "MX": 2, "MY": 3}

type Assembler struct {
	labels  map[string]uint16
	byName  map[string][]cpu.Opcode
	program []uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	a := &Assembler{
		labels: make(map[string]uint16),
		byName: make(map[string][]cpu.Opcode),
	}
	for _, o := range cpu.Opcodes() {
		a.byName[o.Mnemonic()] = append(a.byName[o.Mnemonic()], o)
	}
	return a
}

// Assemble returns the program words and a map from word address to source
// line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// pass1 assigns label addresses. Every instruction is one word.
func (a *Assembler) pass1(lines []string) error {
	var address uint32

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if reserved[key] {
				return fmt.Errorf("label '%s' on line %d is a reserved operand name", lbl, lineNo)
			}
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		switch {
		case p.mnemonic == "":
			continue
		case p.mnemonic == ".ORG":
			target, err := parseOrg(p, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue
		case p.mnemonic == ".WORD":
		default:
			if _, ok := a.byName[p.mnemonic]; !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
		}

		address++
		if address > cpu.MaxProgramWords {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]uint16, map[uint16]int, error) {
	a.program = a.program[:0]
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrg(p, lineNo)
			if err != nil {
				return nil, nil, err
			}
			for uint32(len(a.program)) < target {
				a.program = append(a.program, 0)
			}
			continue
		}

		sourceMap[uint16(len(a.program))] = lineNo

		if p.mnemonic == ".WORD" {
			if len(p.operands) != 1 {
				return nil, nil, fmt.Errorf(".WORD expects exactly one operand on line %d", lineNo)
			}
			val, err := a.parseImmediate(p.operands[0], 0xFFF, lineNo)
			if err != nil {
				return nil, nil, err
			}
			a.program = append(a.program, val)
			continue
		}

		word, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		a.program = append(a.program, word)
	}

	out := make([]uint16, len(a.program))
	copy(out, a.program)
	return out, sourceMap, nil
}

// encode tries every form of the mnemonic in table order and keeps the
// first whose operand templates fit.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	var firstErr error
	for _, o := range a.byName[p.mnemonic] {
		word, ok, err := a.bind(&o, p)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			return word, nil
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return 0, fmt.Errorf("invalid operands for %s on line %d: %s", p.mnemonic, p.lineNo, strings.Join(p.operands, ", "))
}

func (a *Assembler) bind(o *cpu.Opcode, p parsedLine) (uint16, bool, error) {
	templates := o.Operands()
	if len(templates) != len(p.operands) {
		return 0, false, nil
	}

	max0, max1 := o.ArgLimits()
	limits := []uint16{max0, max1}
	var args []uint16

	for i, tmpl := range templates {
		tok := strings.ToUpper(p.operands[i])
		switch tmpl {
		case "%r":
			r, ok := registers[tok]
			if !ok {
				return 0, false, nil
			}
			args = append(args, r)
		case "%m":
			n, ok := parseNibbleAddr(tok)
			if !ok {
				return 0, false, nil
			}
			args = append(args, n)
		case "%i":
			if reserved[tok] {
				return 0, false, nil
			}
			if _, ok := parseNibbleAddr(tok); ok {
				return 0, false, nil
			}
			limit := limits[len(args)]
			var v uint16
			var err error
			if o.Mnemonic() == "PSET" {
				v, err = a.parsePage(p.operands[i], limit, p.lineNo)
			} else {
				v, err = a.parseImmediate(p.operands[i], limit, p.lineNo)
			}
			if err != nil {
				return 0, false, err
			}
			args = append(args, v)
		default:
			if tok != tmpl {
				return 0, false, nil
			}
		}
	}

	for len(args) < 2 {
		args = append(args, 0)
	}
	return o.Encode(args[0], args[1]), true, nil
}

func parseOrg(p parsedLine, lineNo int) (uint32, error) {
	if len(p.operands) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, p.operands[0])
	}
	if target >= cpu.MaxProgramWords {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, p.operands[0])
	}
	return uint32(target), nil
}

func parseNibbleAddr(tok string) (uint16, bool) {
	if len(tok) != 2 || tok[0] != 'M' {
		return 0, false
	}
	v, err := strconv.ParseUint(tok[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// parseImmediate accepts a number no larger than limit, or a label whose
// address is truncated to the field width.
func (a *Assembler) parseImmediate(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s (max 0x%X)", lineNo, token, limit)
		}
		return uint16(value), nil
	}

	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		return addr & limit, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// parsePage is parseImmediate for PSET: a label yields its bank and page.
func (a *Assembler) parsePage(token string, limit uint16, lineNo int) (uint16, error) {
	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		return addr >> 8 & limit, nil
	}
	return a.parseImmediate(token, limit, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
