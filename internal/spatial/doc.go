// Package spatial provides rigid-body transforms and vectors for kinematic
// computation.
//
// A [Transform] is a rotation followed by a translation, stored as a 4x4
// homogeneous matrix from the sdfx library. Transforms compose left to right
// in the usual frame convention:
//
//	world := parent.Mul(local)
//	p := world.Apply(spatial.Vec{X: 1})
//
// Transforms are values; every operation returns a new Transform.
package spatial
