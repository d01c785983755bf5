package planner

// EmptyJoinError is returned when a join is requested over no relations.
type EmptyJoinError struct{}

func (e *EmptyJoinError) Error() string {
	return "cannot plan a join over an empty list of relations"
}
