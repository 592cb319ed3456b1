package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stfu/physics"
)

// Character links an entity to its wheel and torso body. Spawn is where the
// body is rebuilt on respawn; Prefab names the spec it was built from.
type Character struct {
	Body   *physics.Character
	Spawn  cp.Vector
	Prefab string
}

var CharacterComponent = NewComponent[Character]()
