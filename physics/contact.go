package physics

import "github.com/jakecoffman/cp"

// Contact describes a touching pair from the point of view of Self.
type Contact struct {
	Self  *cp.Shape
	Other *cp.Shape
	// Normal points from Self toward Other.
	Normal        cp.Vector
	OtherCategory Category
	OtherSensor   bool
	OtherOwner    any
}

// ContactListener receives begin/end notifications for a shape. Returning
// false from BeginContact makes the pair pass through each other until they
// separate; EndContact is still delivered.
type ContactListener interface {
	BeginContact(c Contact) bool
	EndContact(c Contact)
}

// ContactFuncs adapts plain functions to ContactListener.
type ContactFuncs struct {
	Begin func(c Contact) bool
	End   func(c Contact)
}

func (f ContactFuncs) BeginContact(c Contact) bool {
	if f.Begin == nil {
		return true
	}
	return f.Begin(c)
}

func (f ContactFuncs) EndContact(c Contact) {
	if f.End != nil {
		f.End(c)
	}
}

// ContactListeners fans every contact out to each listener in order. A
// pair stays solid only if every listener accepts it.
type ContactListeners []ContactListener

func (ls ContactListeners) BeginContact(c Contact) bool {
	solid := true
	for _, l := range ls {
		if l != nil && !l.BeginContact(c) {
			solid = false
		}
	}
	return solid
}

func (ls ContactListeners) EndContact(c Contact) {
	for _, l := range ls {
		if l != nil {
			l.EndContact(c)
		}
	}
}

// SetContactListener routes contacts involving shape to l. Passing nil
// removes the listener.
func (w *World) SetContactListener(shape *cp.Shape, l ContactListener) {
	if w == nil || shape == nil {
		return
	}
	if l == nil {
		delete(w.listeners, shape)
		return
	}
	w.listeners[shape] = l
	shape.SetCollisionType(collisionTypeListener)
}

func (w *World) setupHandlers() {
	handler := w.space.NewWildcardCollisionHandler(collisionTypeListener)
	handler.UserData = w
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world := userData.(*World)
		self, other := arb.Shapes()
		l := world.listeners[self]
		if l == nil {
			return true
		}
		return l.BeginContact(world.contactFor(self, other, arb.Normal()))
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		world := userData.(*World)
		self, other := arb.Shapes()
		l := world.listeners[self]
		if l == nil {
			return
		}
		l.EndContact(world.contactFor(self, other, arb.Normal()))
	}
}

func (w *World) contactFor(self, other *cp.Shape, normal cp.Vector) Contact {
	c := Contact{
		Self:          self,
		Other:         other,
		Normal:        normal,
		OtherCategory: shapeCategory(other),
		OtherSensor:   other.Sensor(),
		OtherOwner:    other.UserData,
	}
	if c.OtherOwner == nil && other.Body() != nil {
		c.OtherOwner = w.Owner(other.Body())
	}
	return c
}
