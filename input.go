package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/stfu/physics"
	"github.com/milk9111/stfu/sim"
)

// Input polls the keyboard into one intent per player. Only player 1 has a
// layout; the others stand still.
type Input struct {
	intents []sim.Intent
}

func NewInput(players int) *Input {
	players = max(1, min(players, physics.MaxPlayers))
	return &Input{intents: make([]sim.Intent, players)}
}

func (i *Input) Intents() []sim.Intent { return i.intents }

func (i *Input) Update() {
	var in sim.Intent
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		in.MoveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		in.MoveX += 1
	}
	in.Jump = ebiten.IsKeyPressed(ebiten.KeySpace)
	in.Dash = ebiten.IsKeyPressed(ebiten.KeyShiftLeft)
	in.Shoot = ebiten.IsKeyPressed(ebiten.KeyJ)
	i.intents[0] = in
}
