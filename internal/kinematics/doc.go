// Package kinematics models kinematic chains: trees of joints whose
// positions determine, through forward kinematics, the world pose of every
// joint.
//
// The package defines:
//
//   - [Joint]: one degree of freedom (or a fixed coupling) with limits and a
//     constant offset transform
//   - [Mimic]: an affine relation making one joint follow another
//   - [Tree]: the arena owning every node, with structural and mimic links
//   - [Node]: a handle to one joint in a Tree
//   - [Chain]: a sealed traversal order with bulk set/update operations
//
// # Example
//
//	tree := kinematics.NewTree()
//	base := tree.Add(kinematics.NewJointBuilder("base").
//		Type(kinematics.RotationalJoint(spatial.UnitZ)).MustBuild())
//	slide := tree.Add(kinematics.NewJointBuilder("slide").
//		Type(kinematics.LinearJoint(spatial.UnitX)).
//		Translation(spatial.Vec{Z: 0.5}).MustBuild())
//	_ = slide.SetParent(base)
//
//	chain := tree.Chain()
//	_ = chain.SetJointPositions([]float64{math.Pi / 2, 0.1})
//	poses := chain.UpdateTransforms()
//
// # Caching
//
// World transforms are cached per node and only refreshed by
// [Chain.UpdateTransforms]. Setting a position does not invalidate anything;
// reads through [Node.WorldTransform] return the last computed pose.
//
// # Thread Safety
//
// Trees, nodes and chains are NOT thread-safe. All operations run to
// completion synchronously.
package kinematics
