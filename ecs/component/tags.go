package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type EnemyTag struct{}

var EnemyTagComponent = NewComponent[EnemyTag]()

// Wall marks static level geometry.
type Wall struct{}

var WallComponent = NewComponent[Wall]()

// Name is a display label for logs and the debug viewer.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
