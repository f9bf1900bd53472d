package support

type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusResolved: true},
	StatusResolved: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
