package cpu

const (
	LCDWidth  = 32
	LCDHeight = 16
	IconCount = 8
)

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	ButtonTap
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonTap:
		return "tap"
	default:
		return "button?"
	}
}

type pin uint8

const (
	pinK00 pin = iota
	pinK01
	pinK02
	pinK03
	pinK10
	pinK11
	pinK12
	pinK13
)

// Buttons pull their pin low while pressed.
var buttonPins = [...]pin{
	ButtonLeft:   pinK02,
	ButtonMiddle: pinK01,
	ButtonRight:  pinK00,
	ButtonTap:    pinK03,
}

// Column of each LCD segment line. Values past the matrix width are icon
// segments.
var segPos = [40]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 32, 8, 9, 10, 11, 12, 13, 14, 15, 33, 34, 35,
	31, 30, 29, 28, 27, 26, 25, 24, 36, 23, 22, 21, 20, 19, 18, 17, 16, 37, 38, 39,
}

// Buzzer frequencies in dHz, selected by BZ ctrl bits 0-2.
var buzzerFrequencies = [8]uint32{40960, 32768, 27307, 23406, 20480, 16384, 13653, 11703}

func (c *CPU) initHW() {
	c.setInputPin(pinK00, true)
	c.setInputPin(pinK01, true)
	c.setInputPin(pinK02, true)
}

// setLCD fans one display nibble out to four COM lines of one segment.
func (c *CPU) setLCD(n uint16, v uint8) {
	seg := uint8(n&0x7F) >> 1
	com0 := uint8(n&0x80)>>7*8 + uint8(n&0x1)*4

	for i := uint8(0); i < 4; i++ {
		c.setLCDPin(seg, com0+i, v>>i&0x1 != 0)
	}
}

func (c *CPU) setLCDPin(seg, com uint8, on bool) {
	if int(seg) >= len(segPos) {
		return
	}

	if x := segPos[seg]; x < LCDWidth {
		c.hal.SetLCDMatrix(x, com, on)
		return
	}

	switch {
	case seg == 8 && com < 4:
		c.hal.SetLCDIcon(com, on)
	case seg == 28 && com >= 12:
		c.hal.SetLCDIcon(com-8, on)
	}
}

func (c *CPU) setInputPin(p pin, high bool) {
	port, bit := p>>2, uint8(p&0x3)
	if high {
		c.inputs[port] |= 1 << bit
		return
	}

	c.inputs[port] &^= 1 << bit
	if port == 0 {
		c.generateInterrupt(IntK00K03, bit)
	} else {
		c.generateInterrupt(IntK10K13, bit)
	}
}

// SetButton drives the pin wired to b.
func (c *CPU) SetButton(b Button, pressed bool) {
	if b < 0 || int(b) >= len(buttonPins) {
		return
	}
	c.setInputPin(buttonPins[b], !pressed)
}

func (c *CPU) setBuzzerFrequency(sel uint8) {
	if int(sel) < len(buzzerFrequencies) {
		c.hal.SetFrequency(buzzerFrequencies[sel])
	}
}
