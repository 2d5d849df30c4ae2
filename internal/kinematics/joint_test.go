package kinematics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

var _ = Describe("Joint", func() {
	Describe("SetPosition", func() {
		DescribeTable("respects inclusive limits [0, 2]",
			func(q float64, ok bool) {
				j := linearZ("slide", 0, 2)
				err := j.SetPosition(q)
				if ok {
					Expect(err).NotTo(HaveOccurred())
					got, _ := j.Position()
					Expect(got).To(Equal(q))
				} else {
					Expect(err).To(MatchError(kinematics.ErrOutOfLimits))
				}
			},
			Entry("lower bound", 0.0, true),
			Entry("upper bound", 2.0, true),
			Entry("inside", 1.3, true),
			Entry("below", -1.0, false),
			Entry("above", 2.0001, false),
		)

		It("accepts any value without limits", func() {
			j := kinematics.NewJoint("free", kinematics.RotationalJoint(spatial.UnitX))
			for _, q := range []float64{-1e6, -3, 0, 42, 1e9} {
				Expect(j.SetPosition(q)).To(Succeed())
			}
		})

		It("leaves the position unchanged on failure", func() {
			j := linearZ("slide", 0, 2)
			Expect(j.SetPosition(1.5)).To(Succeed())
			err := j.SetPosition(-1.0)
			Expect(err).To(MatchError(kinematics.ErrOutOfLimits))

			var je *kinematics.JointError
			Expect(err).To(BeAssignableToTypeOf(je))
			Expect(err.Error()).To(ContainSubstring("slide"))

			q, ok := j.Position()
			Expect(ok).To(BeTrue())
			Expect(q).To(Equal(1.5))
		})

		It("refuses fixed joints", func() {
			j := kinematics.NewJoint("mount", kinematics.FixedJoint())
			for _, q := range []float64{0, 1, -1} {
				Expect(j.SetPosition(q)).To(MatchError(kinematics.ErrNotMovable))
			}
			_, ok := j.Position()
			Expect(ok).To(BeFalse())
			Expect(j.HasPosition()).To(BeFalse())
		})
	})

	Describe("LocalTransform", func() {
		It("returns the offset for fixed joints", func() {
			j := kinematics.NewJointBuilder("mount").
				Translation(spatial.Vec{X: 1, Y: 2, Z: 3}).
				MustBuild()
			Expect(j.LocalTransform().ApproxEqual(spatial.Translation(spatial.Vec{X: 1, Y: 2, Z: 3}), 1e-12)).To(BeTrue())
		})

		It("adds linear motion after the offset", func() {
			j := kinematics.NewJointBuilder("slide").
				Type(kinematics.LinearJoint(spatial.UnitZ)).
				Translation(spatial.Vec{Z: 1}).
				MustBuild()
			Expect(j.LocalTransform().Translation().Z).To(BeNumerically("~", 1.0, 1e-12))
			Expect(j.SetPosition(0.6)).To(Succeed())
			Expect(j.LocalTransform().Translation().Z).To(BeNumerically("~", 1.6, 1e-12))
		})

		It("rotates about the axis in the offset frame", func() {
			j := kinematics.NewJointBuilder("yaw").
				Type(kinematics.RotationalJoint(spatial.UnitZ)).
				RPY(0, math.Pi/2, 0).
				MustBuild()
			Expect(j.SetPosition(math.Pi / 2)).To(Succeed())
			// offset maps local z onto world x, so the joint turns about world x
			got := j.LocalTransform().Rotate(spatial.UnitY)
			Expect(got.X).To(BeNumerically("~", 0, 1e-9))
			Expect(got.Y).To(BeNumerically("~", 0, 1e-9))
			Expect(got.Z).To(BeNumerically("~", 1, 1e-9))
		})

		It("tracks SetOffset", func() {
			j := kinematics.NewJoint("slide", kinematics.LinearJoint(spatial.UnitX))
			j.SetOffset(spatial.Translation(spatial.Vec{Y: 2}))
			Expect(j.SetPosition(3)).To(Succeed())
			p := j.LocalTransform().Translation()
			Expect(p.X).To(BeNumerically("~", 3, 1e-12))
			Expect(p.Y).To(BeNumerically("~", 2, 1e-12))
		})
	})

	Describe("JointBuilder", func() {
		It("rejects a zero axis", func() {
			_, err := kinematics.NewJointBuilder("bad").
				Type(kinematics.RotationalJoint(spatial.Zero)).
				Build()
			Expect(err).To(MatchError(kinematics.ErrInvalidAxis))
		})

		It("normalises axes", func() {
			t := kinematics.LinearJoint(spatial.Vec{Y: 4})
			Expect(t.Axis.Y).To(BeNumerically("~", 1, 1e-12))
		})

		It("copies limits", func() {
			b := kinematics.NewJointBuilder("a").Type(kinematics.LinearJoint(spatial.UnitX)).Limits(2, -1)
			j1 := b.MustBuild()
			j2 := b.MustBuild()
			j1.Limits.Max = 10
			Expect(j2.Limits.Max).To(Equal(2.0))
			Expect(j2.Limits.Min).To(Equal(-1.0))
		})
	})

	Describe("Mimic", func() {
		It("is affine in the driver's position", func() {
			m := kinematics.NewMimic(1.5, 0.1)
			Expect(m.MimicPosition(1.0)).To(BeNumerically("~", 1.6, 1e-12))
			Expect(m.MimicPosition(0)).To(BeNumerically("~", 0.1, 1e-12))
			Expect(kinematics.DefaultMimic.MimicPosition(0.7)).To(Equal(0.7))
		})
	})

	Describe("ParseJointKind", func() {
		DescribeTable("maps names and aliases",
			func(in string, want kinematics.JointKind) {
				got, err := kinematics.ParseJointKind(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("fixed", "fixed", kinematics.Fixed),
			Entry("revolute", "revolute", kinematics.Rotational),
			Entry("continuous", "Continuous", kinematics.Rotational),
			Entry("prismatic", " prismatic ", kinematics.Linear),
		)

		It("rejects unknown kinds", func() {
			_, err := kinematics.ParseJointKind("planar")
			Expect(err).To(HaveOccurred())
		})
	})
})
