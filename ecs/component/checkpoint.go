package component

import "github.com/jakecoffman/cp"

// Checkpoint moves every player's respawn point to Spawn the first time a
// player touches it.
type Checkpoint struct {
	Spawn cp.Vector
	// Reached is staged by the contact callback and consumed by the
	// checkpoint system.
	Reached   bool
	Activated bool
}

var CheckpointComponent = NewComponent[Checkpoint]()
