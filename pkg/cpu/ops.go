package cpu

import (
	"fmt"
	"strings"
)

const (
	mask4  = 0xF00
	mask6  = 0xFC0
	mask7  = 0xFE0
	mask8  = 0xFF0
	mask10 = 0xFFC
	mask12 = 0xFFF
)

const opPSET = 0xE40

// Opcode describes one instruction form. Syntax is the assembler form;
// %r is a register operand (A, B, MX, MY), %i an immediate and %m a memory
// nibble M0-MF. Placeholders take arg0 then arg1.
type Opcode struct {
	Syntax  string
	Code    uint16
	Mask    uint16
	Shift   uint
	ArgMask uint16
	Cycles  uint8
	exec    func(c *CPU, arg0, arg1 uint8)
}

// args extracts the operands of op. With ArgMask set arg0 sits under
// ArgMask and arg1 fills the remaining free bits.
func (o *Opcode) args(op uint16) (uint8, uint8) {
	if o.ArgMask != 0 {
		return uint8((op & o.ArgMask) >> o.Shift), uint8(op &^ (o.Mask | o.ArgMask) & 0xFFF)
	}
	return uint8((op &^ o.Mask & 0xFFF) >> o.Shift), 0
}

// ArgLimits returns the largest value each operand can hold.
func (o *Opcode) ArgLimits() (uint16, uint16) {
	if o.ArgMask != 0 {
		return o.ArgMask >> o.Shift, ^(o.Mask | o.ArgMask) & 0xFFF
	}
	return (^o.Mask & 0xFFF) >> o.Shift, 0
}

// Encode builds the instruction word for the given operands.
func (o *Opcode) Encode(arg0, arg1 uint16) uint16 {
	if o.ArgMask != 0 {
		return o.Code | (arg0<<o.Shift)&o.ArgMask | arg1&^(o.Mask|o.ArgMask)&0xFFF
	}
	return o.Code | (arg0<<o.Shift)&^o.Mask&0xFFF
}

// Mnemonic is the first word of Syntax.
func (o *Opcode) Mnemonic() string {
	name, _, _ := strings.Cut(o.Syntax, " ")
	return name
}

// Operands returns the operand templates of Syntax.
func (o *Opcode) Operands() []string {
	_, rest, ok := strings.Cut(o.Syntax, " ")
	if !ok {
		return nil
	}
	ops := strings.Split(rest, ",")
	for i := range ops {
		ops[i] = strings.TrimSpace(ops[i])
	}
	return ops
}

// Table order matters: the first entry whose mask matches wins, which makes
// INC X shadow LDPX A,A, SET F,1 shadow SCF and XOR r,0xF shadow NOT r.
var opcodes = []Opcode{
	{"PSET %i", opPSET, mask7, 0, 0, 5, (*CPU).opPSET},
	{"JP %i", 0x000, mask4, 0, 0, 5, (*CPU).opJP},
	{"JP C, %i", 0x200, mask4, 0, 0, 5, (*CPU).opJPC},
	{"JP NC, %i", 0x300, mask4, 0, 0, 5, (*CPU).opJPNC},
	{"JP Z, %i", 0x600, mask4, 0, 0, 5, (*CPU).opJPZ},
	{"JP NZ, %i", 0x700, mask4, 0, 0, 5, (*CPU).opJPNZ},
	{"JPBA", 0xFE8, mask12, 0, 0, 5, (*CPU).opJPBA},
	{"CALL %i", 0x400, mask4, 0, 0, 7, (*CPU).opCALL},
	{"CALZ %i", 0x500, mask4, 0, 0, 7, (*CPU).opCALZ},
	{"RET", 0xFDF, mask12, 0, 0, 7, (*CPU).opRET},
	{"RETS", 0xFDE, mask12, 0, 0, 12, (*CPU).opRETS},
	{"RETD %i", 0x100, mask4, 0, 0, 12, (*CPU).opRETD},
	{"NOP5", 0xFFB, mask12, 0, 0, 5, (*CPU).opNOP},
	{"NOP7", 0xFFF, mask12, 0, 0, 7, (*CPU).opNOP},
	{"HALT", 0xFF8, mask12, 0, 0, 5, (*CPU).opHALT},
	{"INC X", 0xEE0, mask12, 0, 0, 5, (*CPU).opINCX},
	{"INC Y", 0xEF0, mask12, 0, 0, 5, (*CPU).opINCY},
	{"LD X, %i", 0xB00, mask4, 0, 0, 5, (*CPU).opLDX},
	{"LD Y, %i", 0x800, mask4, 0, 0, 5, (*CPU).opLDY},
	{"LD XP, %r", 0xE80, mask10, 0, 0, 5, (*CPU).opLDXPR},
	{"LD XH, %r", 0xE84, mask10, 0, 0, 5, (*CPU).opLDXHR},
	{"LD XL, %r", 0xE88, mask10, 0, 0, 5, (*CPU).opLDXLR},
	{"LD YP, %r", 0xE90, mask10, 0, 0, 5, (*CPU).opLDYPR},
	{"LD YH, %r", 0xE94, mask10, 0, 0, 5, (*CPU).opLDYHR},
	{"LD YL, %r", 0xE98, mask10, 0, 0, 5, (*CPU).opLDYLR},
	{"LD %r, XP", 0xEA0, mask10, 0, 0, 5, (*CPU).opLDRXP},
	{"LD %r, XH", 0xEA4, mask10, 0, 0, 5, (*CPU).opLDRXH},
	{"LD %r, XL", 0xEA8, mask10, 0, 0, 5, (*CPU).opLDRXL},
	{"LD %r, YP", 0xEB0, mask10, 0, 0, 5, (*CPU).opLDRYP},
	{"LD %r, YH", 0xEB4, mask10, 0, 0, 5, (*CPU).opLDRYH},
	{"LD %r, YL", 0xEB8, mask10, 0, 0, 5, (*CPU).opLDRYL},
	{"ADC XH, %i", 0xA00, mask8, 0, 0, 7, (*CPU).opADCXH},
	{"ADC XL, %i", 0xA10, mask8, 0, 0, 7, (*CPU).opADCXL},
	{"ADC YH, %i", 0xA20, mask8, 0, 0, 7, (*CPU).opADCYH},
	{"ADC YL, %i", 0xA30, mask8, 0, 0, 7, (*CPU).opADCYL},
	{"CP XH, %i", 0xA40, mask8, 0, 0, 7, (*CPU).opCPXH},
	{"CP XL, %i", 0xA50, mask8, 0, 0, 7, (*CPU).opCPXL},
	{"CP YH, %i", 0xA60, mask8, 0, 0, 7, (*CPU).opCPYH},
	{"CP YL, %i", 0xA70, mask8, 0, 0, 7, (*CPU).opCPYL},
	{"LD %r, %i", 0xE00, mask6, 4, 0x030, 5, (*CPU).opLDRI},
	{"LD %r, %r", 0xEC0, mask8, 2, 0x00C, 5, (*CPU).opLDRQ},
	{"LD A, %m", 0xFA0, mask8, 0, 0, 5, (*CPU).opLDAMn},
	{"LD B, %m", 0xFB0, mask8, 0, 0, 5, (*CPU).opLDBMn},
	{"LD %m, A", 0xF80, mask8, 0, 0, 5, (*CPU).opLDMnA},
	{"LD %m, B", 0xF90, mask8, 0, 0, 5, (*CPU).opLDMnB},
	{"LDPX MX, %i", 0xE60, mask8, 0, 0, 5, (*CPU).opLDPXMX},
	{"LDPX %r, %r", 0xEE0, mask8, 2, 0x00C, 5, (*CPU).opLDPXR},
	{"LDPY MY, %i", 0xE70, mask8, 0, 0, 5, (*CPU).opLDPYMY},
	{"LDPY %r, %r", 0xEF0, mask8, 2, 0x00C, 5, (*CPU).opLDPYR},
	{"LBPX MX, %i", 0x900, mask4, 0, 0, 5, (*CPU).opLBPX},
	{"SET F, %i", 0xF40, mask8, 0, 0, 7, (*CPU).opSET},
	{"RST F, %i", 0xF50, mask8, 0, 0, 7, (*CPU).opRST},
	{"SCF", 0xF41, mask12, 0, 0, 7, (*CPU).opSCF},
	{"RCF", 0xF5E, mask12, 0, 0, 7, (*CPU).opRCF},
	{"SZF", 0xF42, mask12, 0, 0, 7, (*CPU).opSZF},
	{"RZF", 0xF5D, mask12, 0, 0, 7, (*CPU).opRZF},
	{"SDF", 0xF44, mask12, 0, 0, 7, (*CPU).opSDF},
	{"RDF", 0xF5B, mask12, 0, 0, 7, (*CPU).opRDF},
	{"EI", 0xF48, mask12, 0, 0, 7, (*CPU).opEI},
	{"DI", 0xF57, mask12, 0, 0, 7, (*CPU).opDI},
	{"INC SP", 0xFDB, mask12, 0, 0, 5, (*CPU).opINCSP},
	{"DEC SP", 0xFCB, mask12, 0, 0, 5, (*CPU).opDECSP},
	{"PUSH %r", 0xFC0, mask10, 0, 0, 5, (*CPU).opPUSHR},
	{"PUSH XP", 0xFC4, mask12, 0, 0, 5, (*CPU).opPUSHXP},
	{"PUSH XH", 0xFC5, mask12, 0, 0, 5, (*CPU).opPUSHXH},
	{"PUSH XL", 0xFC6, mask12, 0, 0, 5, (*CPU).opPUSHXL},
	{"PUSH YP", 0xFC7, mask12, 0, 0, 5, (*CPU).opPUSHYP},
	{"PUSH YH", 0xFC8, mask12, 0, 0, 5, (*CPU).opPUSHYH},
	{"PUSH YL", 0xFC9, mask12, 0, 0, 5, (*CPU).opPUSHYL},
	{"PUSH F", 0xFCA, mask12, 0, 0, 5, (*CPU).opPUSHF},
	{"POP %r", 0xFD0, mask10, 0, 0, 5, (*CPU).opPOPR},
	{"POP XP", 0xFD4, mask12, 0, 0, 5, (*CPU).opPOPXP},
	{"POP XH", 0xFD5, mask12, 0, 0, 5, (*CPU).opPOPXH},
	{"POP XL", 0xFD6, mask12, 0, 0, 5, (*CPU).opPOPXL},
	{"POP YP", 0xFD7, mask12, 0, 0, 5, (*CPU).opPOPYP},
	{"POP YH", 0xFD8, mask12, 0, 0, 5, (*CPU).opPOPYH},
	{"POP YL", 0xFD9, mask12, 0, 0, 5, (*CPU).opPOPYL},
	{"POP F", 0xFDA, mask12, 0, 0, 5, (*CPU).opPOPF},
	{"LD SPH, %r", 0xFE0, mask10, 0, 0, 5, (*CPU).opLDSPHR},
	{"LD SPL, %r", 0xFF0, mask10, 0, 0, 5, (*CPU).opLDSPLR},
	{"LD %r, SPH", 0xFE4, mask10, 0, 0, 5, (*CPU).opLDRSPH},
	{"LD %r, SPL", 0xFF4, mask10, 0, 0, 5, (*CPU).opLDRSPL},
	{"ADD %r, %i", 0xC00, mask6, 4, 0x030, 7, (*CPU).opADDRI},
	{"ADD %r, %r", 0xA80, mask8, 2, 0x00C, 7, (*CPU).opADDRQ},
	{"ADC %r, %i", 0xC40, mask6, 4, 0x030, 7, (*CPU).opADCRI},
	{"ADC %r, %r", 0xA90, mask8, 2, 0x00C, 7, (*CPU).opADCRQ},
	{"SUB %r, %r", 0xAA0, mask8, 2, 0x00C, 7, (*CPU).opSUBRQ},
	{"SBC %r, %i", 0xD40, mask6, 4, 0x030, 7, (*CPU).opSBCRI},
	{"SBC %r, %r", 0xAB0, mask8, 2, 0x00C, 7, (*CPU).opSBCRQ},
	{"AND %r, %i", 0xC80, mask6, 4, 0x030, 7, (*CPU).opANDRI},
	{"AND %r, %r", 0xAC0, mask8, 2, 0x00C, 7, (*CPU).opANDRQ},
	{"OR %r, %i", 0xCC0, mask6, 4, 0x030, 7, (*CPU).opORRI},
	{"OR %r, %r", 0xAD0, mask8, 2, 0x00C, 7, (*CPU).opORRQ},
	{"XOR %r, %i", 0xD00, mask6, 4, 0x030, 7, (*CPU).opXORRI},
	{"XOR %r, %r", 0xAE0, mask8, 2, 0x00C, 7, (*CPU).opXORRQ},
	{"CP %r, %i", 0xDC0, mask6, 4, 0x030, 7, (*CPU).opCPRI},
	{"CP %r, %r", 0xF00, mask8, 2, 0x00C, 7, (*CPU).opCPRQ},
	{"FAN %r, %i", 0xD80, mask6, 4, 0x030, 7, (*CPU).opFANRI},
	{"FAN %r, %r", 0xF10, mask8, 2, 0x00C, 7, (*CPU).opFANRQ},
	{"RLC %r", 0xAF0, mask8, 0, 0, 7, (*CPU).opRLC},
	{"RRC %r", 0xE8C, mask10, 0, 0, 5, (*CPU).opRRC},
	{"INC %m", 0xF60, mask8, 0, 0, 7, (*CPU).opINCMn},
	{"DEC %m", 0xF70, mask8, 0, 0, 7, (*CPU).opDECMn},
	{"ACPX MX, %r", 0xF28, mask10, 0, 0, 7, (*CPU).opACPX},
	{"ACPY MY, %r", 0xF2C, mask10, 0, 0, 7, (*CPU).opACPY},
	{"SCPX MX, %r", 0xF38, mask10, 0, 0, 7, (*CPU).opSCPX},
	{"SCPY MY, %r", 0xF3C, mask10, 0, 0, 7, (*CPU).opSCPY},
	{"NOT %r", 0xD0F, 0xFCF, 4, 0, 7, (*CPU).opNOT},
}

var decodeTable [0x1000]int16

func init() {
	for op := range decodeTable {
		decodeTable[op] = -1
		for i := range opcodes {
			if uint16(op)&opcodes[i].Mask == opcodes[i].Code {
				decodeTable[op] = int16(i)
				break
			}
		}
	}
}

// Opcodes returns the instruction table in decode order.
func Opcodes() []Opcode {
	out := make([]Opcode, len(opcodes))
	copy(out, opcodes)
	return out
}

// Lookup finds the instruction form that executes for op.
func Lookup(op uint16) (*Opcode, bool) {
	i := decodeTable[op&0xFFF]
	if i < 0 {
		return nil, false
	}
	return &opcodes[i], true
}

var regNames = [4]string{"A", "B", "MX", "MY"}

// Disassemble renders op in assembler syntax.
func Disassemble(op uint16) string {
	o, ok := Lookup(op)
	if !ok {
		return fmt.Sprintf(".WORD 0x%03X", op&0xFFF)
	}

	arg0, arg1 := o.args(op & 0xFFF)
	args := []uint8{arg0, arg1}
	var b strings.Builder
	s := o.Syntax
	for len(s) > 0 {
		i := strings.IndexByte(s, '%')
		if i < 0 || i+1 >= len(s) {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])

		v := args[0]
		args = args[1:]
		switch s[i+1] {
		case 'r':
			b.WriteString(regNames[v&0x3])
		case 'm':
			fmt.Fprintf(&b, "M%X", v&0xF)
		default:
			fmt.Fprintf(&b, "0x%02X", v)
		}
		s = s[i+2:]
	}
	return b.String()
}

func (c *CPU) rq(i uint8) uint8 {
	switch i & 0x3 {
	case 0:
		return c.A
	case 1:
		return c.B
	case 2:
		return c.getMemory(c.X)
	default:
		return c.getMemory(c.Y)
	}
}

func (c *CPU) setRQ(i, v uint8) {
	v &= 0xF
	switch i & 0x3 {
	case 0:
		c.A = v
	case 1:
		c.B = v
	case 2:
		c.setMemory(c.X, v)
	default:
		c.setMemory(c.Y, v)
	}
}

// Index register helpers. P is the page nibble, H and L the step nibbles.
func regP(r uint16) uint8 { return uint8(r>>8) & 0xF }
func regH(r uint16) uint8 { return uint8(r>>4) & 0xF }
func regL(r uint16) uint8 { return uint8(r) & 0xF }

func joinPHL(p, h, l uint8) uint16 {
	return uint16(p&0xF)<<8 | uint16(h&0xF)<<4 | uint16(l&0xF)
}

// stepInc advances the low byte of an index register, keeping the page.
func stepInc(r uint16, n uint16) uint16 {
	return r&0xF00 | (r+n)&0xFF
}

func (c *CPU) jumpInPage(step uint8) {
	c.nextPC = uint16(step) | uint16(c.NP)<<8
}

func (c *CPU) opPSET(arg0, _ uint8) { c.NP = arg0 & 0x1F }
func (c *CPU) opJP(arg0, _ uint8)   { c.jumpInPage(arg0) }

func (c *CPU) opJPC(arg0, _ uint8) {
	if c.flag(FlagC) {
		c.jumpInPage(arg0)
	}
}

func (c *CPU) opJPNC(arg0, _ uint8) {
	if !c.flag(FlagC) {
		c.jumpInPage(arg0)
	}
}

func (c *CPU) opJPZ(arg0, _ uint8) {
	if c.flag(FlagZ) {
		c.jumpInPage(arg0)
	}
}

func (c *CPU) opJPNZ(arg0, _ uint8) {
	if !c.flag(FlagZ) {
		c.jumpInPage(arg0)
	}
}

func (c *CPU) opJPBA(_, _ uint8) {
	c.jumpInPage(c.A | c.B<<4)
}

func (c *CPU) opCALL(arg0, _ uint8) {
	ret := (c.PC + 1) & 0x1FFF
	c.pushReturn(ret)
	c.nextPC = toPC(ret>>12, uint16(c.NP&0xF), uint16(arg0))
	c.CallDepth++
}

func (c *CPU) opCALZ(arg0, _ uint8) {
	c.pushReturn((c.PC + 1) & 0x1FFF)
	c.nextPC = toPC(0, 0, uint16(arg0))
	c.CallDepth++
}

func (c *CPU) opRET(_, _ uint8) {
	c.nextPC = c.popReturn()
}

func (c *CPU) opRETS(_, _ uint8) {
	c.nextPC = (c.popReturn() + 1) & 0x1FFF
}

func (c *CPU) opRETD(arg0, _ uint8) {
	c.nextPC = c.popReturn()
	c.setMemory(c.X, arg0&0xF)
	c.setMemory(c.X+1, arg0>>4&0xF)
	c.X = stepInc(c.X, 2)
}

func (c *CPU) opNOP(_, _ uint8) {}

func (c *CPU) opHALT(_, _ uint8) {
	c.Halted = true
	c.hal.Halt()
}

func (c *CPU) opINCX(_, _ uint8)    { c.X = stepInc(c.X, 1) }
func (c *CPU) opINCY(_, _ uint8)    { c.Y = stepInc(c.Y, 1) }
func (c *CPU) opLDX(arg0, _ uint8)  { c.X = c.X&0xF00 | uint16(arg0) }
func (c *CPU) opLDY(arg0, _ uint8)  { c.Y = c.Y&0xF00 | uint16(arg0) }
func (c *CPU) opLDXPR(arg0, _ uint8) { c.X = joinPHL(c.rq(arg0), regH(c.X), regL(c.X)) }
func (c *CPU) opLDXHR(arg0, _ uint8) { c.X = joinPHL(regP(c.X), c.rq(arg0), regL(c.X)) }
func (c *CPU) opLDXLR(arg0, _ uint8) { c.X = joinPHL(regP(c.X), regH(c.X), c.rq(arg0)) }
func (c *CPU) opLDYPR(arg0, _ uint8) { c.Y = joinPHL(c.rq(arg0), regH(c.Y), regL(c.Y)) }
func (c *CPU) opLDYHR(arg0, _ uint8) { c.Y = joinPHL(regP(c.Y), c.rq(arg0), regL(c.Y)) }
func (c *CPU) opLDYLR(arg0, _ uint8) { c.Y = joinPHL(regP(c.Y), regH(c.Y), c.rq(arg0)) }
func (c *CPU) opLDRXP(arg0, _ uint8) { c.setRQ(arg0, regP(c.X)) }
func (c *CPU) opLDRXH(arg0, _ uint8) { c.setRQ(arg0, regH(c.X)) }
func (c *CPU) opLDRXL(arg0, _ uint8) { c.setRQ(arg0, regL(c.X)) }
func (c *CPU) opLDRYP(arg0, _ uint8) { c.setRQ(arg0, regP(c.Y)) }
func (c *CPU) opLDRYH(arg0, _ uint8) { c.setRQ(arg0, regH(c.Y)) }
func (c *CPU) opLDRYL(arg0, _ uint8) { c.setRQ(arg0, regL(c.Y)) }

// adcNibble adds with carry into a 4-bit field, setting C and Z.
func (c *CPU) adcNibble(v, arg uint8) uint8 {
	tmp := v + arg + c.carry()
	c.setFlag(FlagC, tmp>>4 != 0)
	c.setFlag(FlagZ, tmp&0xF == 0)
	return tmp & 0xF
}

func (c *CPU) compare(v, arg uint8) {
	c.setFlag(FlagC, v < arg)
	c.setFlag(FlagZ, v == arg)
}

func (c *CPU) opADCXH(arg0, _ uint8) {
	c.X = joinPHL(regP(c.X), c.adcNibble(regH(c.X), arg0&0xF), regL(c.X))
}

func (c *CPU) opADCXL(arg0, _ uint8) {
	c.X = joinPHL(regP(c.X), regH(c.X), c.adcNibble(regL(c.X), arg0&0xF))
}

func (c *CPU) opADCYH(arg0, _ uint8) {
	c.Y = joinPHL(regP(c.Y), c.adcNibble(regH(c.Y), arg0&0xF), regL(c.Y))
}

func (c *CPU) opADCYL(arg0, _ uint8) {
	c.Y = joinPHL(regP(c.Y), regH(c.Y), c.adcNibble(regL(c.Y), arg0&0xF))
}

func (c *CPU) opCPXH(arg0, _ uint8) { c.compare(regH(c.X), arg0&0xF) }
func (c *CPU) opCPXL(arg0, _ uint8) { c.compare(regL(c.X), arg0&0xF) }
func (c *CPU) opCPYH(arg0, _ uint8) { c.compare(regH(c.Y), arg0&0xF) }
func (c *CPU) opCPYL(arg0, _ uint8) { c.compare(regL(c.Y), arg0&0xF) }

func (c *CPU) opLDRI(arg0, arg1 uint8) { c.setRQ(arg0, arg1) }
func (c *CPU) opLDRQ(arg0, arg1 uint8) { c.setRQ(arg0, c.rq(arg1)) }
func (c *CPU) opLDAMn(arg0, _ uint8)   { c.A = c.getMemory(uint16(arg0)) }
func (c *CPU) opLDBMn(arg0, _ uint8)   { c.B = c.getMemory(uint16(arg0)) }
func (c *CPU) opLDMnA(arg0, _ uint8)   { c.setMemory(uint16(arg0), c.A) }
func (c *CPU) opLDMnB(arg0, _ uint8)   { c.setMemory(uint16(arg0), c.B) }

func (c *CPU) opLDPXMX(arg0, _ uint8) {
	c.setMemory(c.X, arg0)
	c.X = stepInc(c.X, 1)
}

func (c *CPU) opLDPXR(arg0, arg1 uint8) {
	c.setRQ(arg0, c.rq(arg1))
	c.X = stepInc(c.X, 1)
}

func (c *CPU) opLDPYMY(arg0, _ uint8) {
	c.setMemory(c.Y, arg0)
	c.Y = stepInc(c.Y, 1)
}

func (c *CPU) opLDPYR(arg0, arg1 uint8) {
	c.setRQ(arg0, c.rq(arg1))
	c.Y = stepInc(c.Y, 1)
}

func (c *CPU) opLBPX(arg0, _ uint8) {
	c.setMemory(c.X, arg0&0xF)
	c.setMemory(c.X+1, arg0>>4&0xF)
	c.X = stepInc(c.X, 2)
}

func (c *CPU) opSET(arg0, _ uint8) { c.Flags |= arg0 & 0xF }
func (c *CPU) opRST(arg0, _ uint8) { c.Flags &= arg0 & 0xF }
func (c *CPU) opSCF(_, _ uint8)    { c.setFlag(FlagC, true) }
func (c *CPU) opRCF(_, _ uint8)    { c.setFlag(FlagC, false) }
func (c *CPU) opSZF(_, _ uint8)    { c.setFlag(FlagZ, true) }
func (c *CPU) opRZF(_, _ uint8)    { c.setFlag(FlagZ, false) }
func (c *CPU) opSDF(_, _ uint8)    { c.setFlag(FlagD, true) }
func (c *CPU) opRDF(_, _ uint8)    { c.setFlag(FlagD, false) }
func (c *CPU) opEI(_, _ uint8)     { c.setFlag(FlagI, true) }
func (c *CPU) opDI(_, _ uint8)     { c.setFlag(FlagI, false) }
func (c *CPU) opINCSP(_, _ uint8)  { c.SP++ }
func (c *CPU) opDECSP(_, _ uint8)  { c.SP-- }

func (c *CPU) push(v uint8) {
	c.SP--
	c.setMemory(uint16(c.SP), v)
}

func (c *CPU) pop() uint8 {
	v := c.getMemory(uint16(c.SP))
	c.SP++
	return v
}

func (c *CPU) opPUSHR(arg0, _ uint8) { c.push(c.rq(arg0)) }
func (c *CPU) opPUSHXP(_, _ uint8)   { c.push(regP(c.X)) }
func (c *CPU) opPUSHXH(_, _ uint8)   { c.push(regH(c.X)) }
func (c *CPU) opPUSHXL(_, _ uint8)   { c.push(regL(c.X)) }
func (c *CPU) opPUSHYP(_, _ uint8)   { c.push(regP(c.Y)) }
func (c *CPU) opPUSHYH(_, _ uint8)   { c.push(regH(c.Y)) }
func (c *CPU) opPUSHYL(_, _ uint8)   { c.push(regL(c.Y)) }
func (c *CPU) opPUSHF(_, _ uint8)    { c.push(c.Flags) }

func (c *CPU) opPOPR(arg0, _ uint8) { c.setRQ(arg0, c.pop()) }
func (c *CPU) opPOPXP(_, _ uint8)   { c.X = joinPHL(c.pop(), regH(c.X), regL(c.X)) }
func (c *CPU) opPOPXH(_, _ uint8)   { c.X = joinPHL(regP(c.X), c.pop(), regL(c.X)) }
func (c *CPU) opPOPXL(_, _ uint8)   { c.X = joinPHL(regP(c.X), regH(c.X), c.pop()) }
func (c *CPU) opPOPYP(_, _ uint8)   { c.Y = joinPHL(c.pop(), regH(c.Y), regL(c.Y)) }
func (c *CPU) opPOPYH(_, _ uint8)   { c.Y = joinPHL(regP(c.Y), c.pop(), regL(c.Y)) }
func (c *CPU) opPOPYL(_, _ uint8)   { c.Y = joinPHL(regP(c.Y), regH(c.Y), c.pop()) }
func (c *CPU) opPOPF(_, _ uint8)    { c.Flags = c.pop() & 0xF }

func (c *CPU) opLDSPHR(arg0, _ uint8) { c.SP = c.SP&0x0F | c.rq(arg0)<<4 }
func (c *CPU) opLDSPLR(arg0, _ uint8) { c.SP = c.SP&0xF0 | c.rq(arg0) }
func (c *CPU) opLDRSPH(arg0, _ uint8) { c.setRQ(arg0, c.SP>>4) }
func (c *CPU) opLDRSPL(arg0, _ uint8) { c.setRQ(arg0, c.SP&0xF) }

// add stores a+v+cin into r, where a is the value already read from r,
// adjusting for BCD when D is set.
func (c *CPU) add(r, a, v, cin uint8) {
	tmp := a + v + cin
	var res uint8
	if c.flag(FlagD) {
		if tmp >= 10 {
			res = (tmp - 10) & 0xF
			c.setFlag(FlagC, true)
		} else {
			res = tmp
			c.setFlag(FlagC, false)
		}
	} else {
		res = tmp & 0xF
		c.setFlag(FlagC, tmp>>4 != 0)
	}
	c.setRQ(r, res)
	c.setFlag(FlagZ, res == 0)
}

// sub stores a-v-bin into r, where a is the value already read from r,
// adjusting for BCD when D is set.
func (c *CPU) sub(r, a, v, bin uint8) {
	tmp := a - v - bin
	var res uint8
	if c.flag(FlagD) && tmp>>4 != 0 {
		res = (tmp - 6) & 0xF
	} else {
		res = tmp & 0xF
	}
	c.setFlag(FlagC, tmp>>4 != 0)
	c.setRQ(r, res)
	c.setFlag(FlagZ, res == 0)
}

// The destination is read before the source: both may be the same
// clear-on-read register.
func (c *CPU) opADDRI(arg0, arg1 uint8) { c.add(arg0, c.rq(arg0), arg1, 0) }
func (c *CPU) opADDRQ(arg0, arg1 uint8) { c.add(arg0, c.rq(arg0), c.rq(arg1), 0) }
func (c *CPU) opADCRI(arg0, arg1 uint8) { c.add(arg0, c.rq(arg0), arg1, c.carry()) }
func (c *CPU) opADCRQ(arg0, arg1 uint8) { c.add(arg0, c.rq(arg0), c.rq(arg1), c.carry()) }
func (c *CPU) opSUBRQ(arg0, arg1 uint8) { c.sub(arg0, c.rq(arg0), c.rq(arg1), 0) }
func (c *CPU) opSBCRI(arg0, arg1 uint8) { c.sub(arg0, c.rq(arg0), arg1, c.carry()) }
func (c *CPU) opSBCRQ(arg0, arg1 uint8) { c.sub(arg0, c.rq(arg0), c.rq(arg1), c.carry()) }

func (c *CPU) logic(r, v uint8) {
	c.setRQ(r, v)
	c.setFlag(FlagZ, v&0xF == 0)
}

func (c *CPU) opANDRI(arg0, arg1 uint8) { c.logic(arg0, c.rq(arg0)&arg1) }
func (c *CPU) opANDRQ(arg0, arg1 uint8) { c.logic(arg0, c.rq(arg0)&c.rq(arg1)) }
func (c *CPU) opORRI(arg0, arg1 uint8)  { c.logic(arg0, c.rq(arg0)|arg1) }
func (c *CPU) opORRQ(arg0, arg1 uint8)  { c.logic(arg0, c.rq(arg0)|c.rq(arg1)) }
func (c *CPU) opXORRI(arg0, arg1 uint8) { c.logic(arg0, c.rq(arg0)^arg1) }
func (c *CPU) opXORRQ(arg0, arg1 uint8) { c.logic(arg0, c.rq(arg0)^c.rq(arg1)) }
func (c *CPU) opCPRI(arg0, arg1 uint8)  { c.compare(c.rq(arg0), arg1) }
func (c *CPU) opCPRQ(arg0, arg1 uint8)  { c.compare(c.rq(arg0), c.rq(arg1)) }

func (c *CPU) opFANRI(arg0, arg1 uint8) { c.setFlag(FlagZ, c.rq(arg0)&arg1 == 0) }
func (c *CPU) opFANRQ(arg0, arg1 uint8) { c.setFlag(FlagZ, c.rq(arg0)&c.rq(arg1) == 0) }

// Rotates leave Z untouched.
func (c *CPU) opRLC(arg0, _ uint8) {
	v := c.rq(arg0)
	tmp := v<<1 | c.carry()
	c.setFlag(FlagC, v&0x8 != 0)
	c.setRQ(arg0, tmp&0xF)
}

func (c *CPU) opRRC(arg0, _ uint8) {
	v := c.rq(arg0)
	tmp := v>>1 | c.carry()<<3
	c.setFlag(FlagC, v&0x1 != 0)
	c.setRQ(arg0, tmp&0xF)
}

func (c *CPU) opINCMn(arg0, _ uint8) {
	tmp := c.getMemory(uint16(arg0)) + 1
	c.setMemory(uint16(arg0), tmp&0xF)
	c.setFlag(FlagC, tmp>>4 != 0)
	c.setFlag(FlagZ, tmp&0xF == 0)
}

func (c *CPU) opDECMn(arg0, _ uint8) {
	tmp := c.getMemory(uint16(arg0)) - 1
	c.setMemory(uint16(arg0), tmp&0xF)
	c.setFlag(FlagC, tmp>>4 != 0)
	c.setFlag(FlagZ, tmp&0xF == 0)
}

// acp adds r and carry into the nibble at *ptr, then steps the pointer.
func (c *CPU) acp(ptr *uint16, r uint8) {
	tmp := c.getMemory(*ptr) + c.rq(r) + c.carry()
	var res uint8
	if c.flag(FlagD) {
		if tmp >= 10 {
			res = (tmp - 10) & 0xF
			c.setFlag(FlagC, true)
		} else {
			res = tmp
			c.setFlag(FlagC, false)
		}
	} else {
		res = tmp & 0xF
		c.setFlag(FlagC, tmp>>4 != 0)
	}
	c.setMemory(*ptr, res)
	c.setFlag(FlagZ, res == 0)
	*ptr = stepInc(*ptr, 1)
}

func (c *CPU) scp(ptr *uint16, r uint8) {
	tmp := c.getMemory(*ptr) - c.rq(r) - c.carry()
	var res uint8
	if c.flag(FlagD) && tmp>>4 != 0 {
		res = (tmp - 6) & 0xF
	} else {
		res = tmp & 0xF
	}
	c.setFlag(FlagC, tmp>>4 != 0)
	c.setMemory(*ptr, res)
	c.setFlag(FlagZ, res == 0)
	*ptr = stepInc(*ptr, 1)
}

func (c *CPU) opACPX(arg0, _ uint8) { c.acp(&c.X, arg0) }
func (c *CPU) opACPY(arg0, _ uint8) { c.acp(&c.Y, arg0) }
func (c *CPU) opSCPX(arg0, _ uint8) { c.scp(&c.X, arg0) }
func (c *CPU) opSCPY(arg0, _ uint8) { c.scp(&c.Y, arg0) }

func (c *CPU) opNOT(arg0, _ uint8) { c.logic(arg0, ^c.rq(arg0)&0xF) }
