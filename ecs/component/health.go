package component

import "github.com/milk9111/stfu/common"

// Health tracks hitpoints and the hit, recovery and respawn windows. While
// hit or recovering the entity is invulnerable.
type Health struct {
	HP  int
	Max int

	HitDelay      float64
	RecoveryDelay float64
	RespawnDelay  float64

	Hit        bool
	Recovering bool
	Dead       bool

	HitTimer      common.Timer
	RecoveryTimer common.Timer
	RespawnTimer  common.Timer

	// Written by contact callbacks, consumed by the health system.
	PendingHits   int
	DeathContacts int
	KillRequested bool
}

var HealthComponent = NewComponent[Health]()
