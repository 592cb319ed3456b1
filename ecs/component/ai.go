package component

// AIScript points an enemy at a tengo script defining update(engine, state).
type AIScript struct {
	Path string
}

var AIScriptComponent = NewComponent[AIScript]()
