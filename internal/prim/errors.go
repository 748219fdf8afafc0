package prim

import "fmt"

func errNotReachableFromParent(id, parent int) error {
	return fmt.Errorf("prim %d not reachable from parent %d's first-child chain", id, parent)
}
