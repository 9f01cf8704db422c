package store

import "fmt"

// StoreError means the store was handed something it can't hold: a node of
// the wrong shape, or (with strict arity) a fact of the wrong size.
type StoreError struct {
	Op     string
	Reason string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

type arityMismatch struct {
	Predicate string
	Wanted    int
	Got       int
}

func (e *arityMismatch) Error() string {
	return fmt.Sprintf("size of arguments does not match: %s has arity %d, fact has %d", e.Predicate, e.Wanted, e.Got)
}
