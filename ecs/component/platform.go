package component

import "github.com/milk9111/stfu/physics"

// Platform drives one moving tile: linear, circular or falling.
type Platform struct {
	Body physics.Platform
}

var PlatformComponent = NewComponent[Platform]()
