package kernel

// ctrlL is the control code produced by CTRL-L.
const ctrlL = 0x0c

// Keyboard turns already-decoded input bytes into terminal actions. A
// real keyboard driver decodes PS/2 scancodes into ASCII using make and
// break codes and a shift-state table; that decoding happens in the tty
// layer that reads the real terminal, so what reaches Keyboard here is
// just the resulting byte stream, the same boundary the rest of this
// kernel draws around real hardware it does not drive directly.
type Keyboard struct {
	terminals *TerminalSet
}

// NewKeyboard returns a keyboard delivering input to ts's currently
// displayed terminal.
func NewKeyboard(ts *TerminalSet) *Keyboard {
	return &Keyboard{terminals: ts}
}

// HandleByte delivers one input byte to the currently displayed
// terminal's line discipline. CTRL-L is intercepted here to clear the
// screen rather than being queued as input.
func (k *Keyboard) HandleByte(b byte) {
	term, err := k.terminals.Terminal(k.terminals.Displayed())
	if err != nil {
		return
	}
	if b == ctrlL {
		term.Clear()
		return
	}
	term.PushByte(b)
}

// SelectTerminal implements the ALT-F1/F2/F3 hotkey: switching which
// terminal is displayed without disturbing the scheduler's round-robin
// over which terminal's task runs next.
func (k *Keyboard) SelectTerminal(id TermID) error {
	return k.terminals.SwitchDisplayed(id)
}
