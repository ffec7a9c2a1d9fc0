package core

// Action is a semantic input, abstracted from key presses and wire strings.
// The set is closed: anything a host cannot map becomes ActionNone.
type Action int

const (
	ActionNone      Action = iota
	ActionMoveLeft         // A, Left arrow, "move_left"
	ActionMoveRight        // D, Right arrow, "move_right"
	ActionJump             // W, Up, Space, "jump"
	ActionShoot            // F, X, Enter, "shoot"
	ActionPause            // P
	ActionRestart          // R after game over
	ActionBack             // B, Escape
	ActionQuit             // Q, Ctrl+C
)

// String returns the wire name for gameplay actions and a readable name for
// platform-only ones.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMoveLeft:
		return "move_left"
	case ActionMoveRight:
		return "move_right"
	case ActionJump:
		return "jump"
	case ActionShoot:
		return "shoot"
	case ActionPause:
		return "pause"
	case ActionRestart:
		return "restart"
	case ActionBack:
		return "back"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// IsGameplay reports whether the action is one a remote client may send.
func (a Action) IsGameplay() bool {
	switch a {
	case ActionMoveLeft, ActionMoveRight, ActionJump, ActionShoot:
		return true
	}
	return false
}

// ParseAction maps a wire name to a gameplay action.
// Unknown names return ActionNone and false.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "move_left":
		return ActionMoveLeft, true
	case "move_right":
		return ActionMoveRight, true
	case "jump":
		return ActionJump, true
	case "shoot":
		return ActionShoot, true
	default:
		return ActionNone, false
	}
}

// InputFrame holds the actions triggered during one simulation tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Gameplay returns the gameplay actions of the frame in a fixed order, so
// replaying a frame is deterministic regardless of map iteration.
func (f InputFrame) Gameplay() []Action {
	var out []Action
	for _, a := range []Action{ActionMoveLeft, ActionMoveRight, ActionJump, ActionShoot} {
		if f.Has(a) {
			out = append(out, a)
		}
	}
	return out
}
