package cpu

// LogLevel selects which core messages a HAL wants to receive.
type LogLevel uint8

const (
	LogError LogLevel = 1 << iota
	LogInfo
	LogMemory
	LogCPU
	LogInterrupt
)

func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "error"
	case LogInfo:
		return "info"
	case LogMemory:
		return "memory"
	case LogCPU:
		return "cpu"
	case LogInterrupt:
		return "int"
	default:
		return "log"
	}
}

// HAL is everything the core asks of its host. The core calls these hooks
// synchronously from inside Step.
type HAL interface {
	// Halt is called when the program executes HALT.
	Halt()
	IsLogEnabled(level LogLevel) bool
	Log(level LogLevel, format string, args ...any)
	// SleepUntil blocks until Timestamp reaches ts.
	SleepUntil(ts uint32)
	// Timestamp is a free running clock in units of the frequency passed
	// to Machine.Init.
	Timestamp() uint32
	UpdateScreen()
	SetLCDMatrix(x, y uint8, on bool)
	SetLCDIcon(icon uint8, on bool)
	// SetFrequency takes the buzzer frequency in tenths of a hertz.
	SetFrequency(dHz uint32)
	PlayFrequency(enabled bool)
	// Handler is polled after every screen update; a non-zero result
	// pauses the machine.
	Handler() int
}
