package component

// Controller holds one tick of intents for a player. Whatever drives the
// player (keyboard, replay, tests) writes MoveX, Jump, Dash and Shoot; the
// controller system derives press and release edges from the previous tick.
type Controller struct {
	Index int
	MoveX float64
	Jump  bool
	Dash  bool
	Shoot bool

	// previous tick, maintained by the controller system
	JumpHeld bool
	DashHeld bool
}

var ControllerComponent = NewComponent[Controller]()
