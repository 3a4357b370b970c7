package lfsource

// Controller names a MIDI continuous controller an LfSource Control
// expression can read, normalized to [0, 1] by the caller supplying the
// AutomationContext's controller reader.
type Controller string

const (
	ControllerModulation     Controller = "Modulation"
	ControllerBreath         Controller = "Breath"
	ControllerFoot           Controller = "Foot"
	ControllerExpression     Controller = "Expression"
	ControllerSustain        Controller = "Sustain"
	ControllerPortamentoTime Controller = "PortamentoTime"
)

// ccNumbers maps the named controllers to their standard MIDI CC numbers.
var ccNumbers = map[Controller]int{
	ControllerModulation:     1,
	ControllerBreath:         2,
	ControllerFoot:           4,
	ControllerExpression:     11,
	ControllerSustain:        64,
	ControllerPortamentoTime: 5,
}

// CCNumber returns the MIDI CC number a Controller reads, and whether the
// name was recognized.
func (c Controller) CCNumber() (int, bool) {
	n, ok := ccNumbers[c]
	return n, ok
}
