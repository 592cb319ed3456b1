package component

// Transform is the render-facing pose of an entity: the smoothed position
// in world units and the body angle.
type Transform struct {
	X     float64
	Y     float64
	Angle float64
}

var TransformComponent = NewComponent[Transform]()
