package tape

import "fmt"

// Choice is the four-valued tag recorded per min/max node during
// interval evaluation: which operand(s) were live at that call.
//
// The wire encoding (the byte the compiled code writes) is the
// value's own numeric order: Unknown=0, Left=1, Right=2, Both=3.
type Choice uint8

const (
	Unknown Choice = iota
	Left
	Right
	Both
)

func (c Choice) String() string {
	switch c {
	case Unknown:
		return "Unknown"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Both:
		return "Both"
	default:
		return fmt.Sprintf("Choice(%d)", uint8(c))
	}
}

// DecodeChoice converts a raw choice byte written by compiled code
// into its tagged form. A byte outside {0,1,2,3} is a defect: the
// compiled min/max lowering only ever stores Left, Right or Both, so
// any other value means the choice buffer was corrupted or stale.
func DecodeChoice(b byte) (Choice, error) {
	if b > uint8(Both) {
		return Unknown, fmt.Errorf("tape: invalid choice byte %d", b)
	}
	return Choice(b), nil
}
