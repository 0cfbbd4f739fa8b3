package inputbox

// Mode is the interpretation state of the input box.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommand
	ModeSearchForward
	ModeSearchBackward
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeCommand:
		return "COMMAND"
	case ModeSearchForward:
		return "SEARCH"
	case ModeSearchBackward:
		return "SEARCH BACKWARD"
	}
	return "UNKNOWN"
}

// IsSearch reports whether m is one of the search modes.
func (m Mode) IsSearch() bool {
	return m == ModeSearchForward || m == ModeSearchBackward
}

// ModeOf derives the mode from the text of the line alone.
func ModeOf(s string) Mode {
	if s == "" {
		return ModeNormal
	}
	switch s[0] {
	case '/':
		return ModeSearchForward
	case '?':
		return ModeSearchBackward
	}
	return ModeCommand
}
