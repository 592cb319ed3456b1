package component

import "github.com/milk9111/stfu/locomotion"

type Locomotion struct {
	Player *locomotion.Player
}

var LocomotionComponent = NewComponent[Locomotion]()

// EnemyKind selects the behavior family an enemy script may use.
type EnemyKind string

const (
	EnemyWalker EnemyKind = "walker"
	EnemyFlyer  EnemyKind = "flyer"
)

type Enemy struct {
	Policy *locomotion.Enemy
	Kind   EnemyKind
}

var EnemyComponent = NewComponent[Enemy]()
