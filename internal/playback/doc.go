// Package playback steps a Trajectory through a kinematics.Chain over time,
// recording a Frame per step and feeding it to metrics and observers.
//
// Playback is purely kinematic: each frame is the chain's pose at the
// commanded positions, with nothing integrated between steps.
package playback
