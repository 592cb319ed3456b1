package component

import "github.com/milk9111/stfu/physics"

// Weapon is a player's gun. A shot fires on the press edge of the trigger
// while fewer than MaxBullets are in flight.
type Weapon struct {
	MaxBullets      int
	Speed           float64
	Width           float64
	Height          float64
	Range           float64
	Density         float64
	GoneOnCollision bool

	Bullets []*physics.Bullet
	// trigger state of the previous tick
	Shooting bool
}

var WeaponComponent = NewComponent[Weapon]()
