// Package policy holds authorization predicates shared by every mutation path.
package policy

import "strings"

// Owns reports whether actor owns a resource held by owner. Resources without an owner
// are owned by nobody.
func Owns(actor, owner string) bool {
	actor = strings.TrimSpace(actor)
	return actor != "" && actor == strings.TrimSpace(owner)
}
