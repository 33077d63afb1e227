package component

// Health is only mutated through the health pipeline, which keeps
// 0 <= Current <= Max.
type Health struct {
	Current int
	Max     int
}

var HealthComponent = NewComponent[Health]()
