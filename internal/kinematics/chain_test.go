package kinematics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
	"go.uber.org/multierr"
)

var _ = Describe("Chain", func() {
	Describe("two joint arm", func() {
		var (
			tree  *kinematics.Tree
			l0    kinematics.Node
			l1    kinematics.Node
			chain *kinematics.Chain
		)

		BeforeEach(func() {
			tree = kinematics.NewTree()
			l0 = tree.Add(kinematics.NewJointBuilder("l0").
				Translation(spatial.Vec{Z: 0.2}).
				Type(kinematics.RotationalJoint(spatial.UnitY)).
				MustBuild())
			l1 = tree.Add(kinematics.NewJointBuilder("l1").
				Translation(spatial.Vec{Z: 1.0}).
				Type(kinematics.LinearJoint(spatial.UnitZ)).
				MustBuild())
			Expect(l1.SetParent(l0)).To(Succeed())
			chain = kinematics.FromRoot(l0)
		})

		It("has no cached poses before the first update", func() {
			Expect(chain.SetJointPositions([]float64{math.Pi / 2, 0.1})).To(Succeed())
			_, ok := l1.WorldTransform()
			Expect(ok).To(BeFalse())
		})

		It("computes forward kinematics", func() {
			Expect(chain.SetJointPositions([]float64{math.Pi / 2, 0.1})).To(Succeed())
			poses := chain.UpdateTransforms()
			Expect(poses).To(HaveLen(2))

			w, ok := l1.WorldTransform()
			Expect(ok).To(BeTrue())
			p := w.Translation()
			Expect(p.X).To(BeNumerically("~", 1.1, 1e-4))
			Expect(p.Y).To(BeNumerically("~", 0, 1e-4))
			Expect(p.Z).To(BeNumerically("~", 0.2, 1e-4))

			w0, _ := l0.WorldTransform()
			Expect(poses[0].ApproxEqual(w0, 1e-12)).To(BeTrue())
			Expect(poses[1].ApproxEqual(w, 1e-12)).To(BeTrue())
		})

		It("is idempotent without position changes", func() {
			Expect(chain.SetJointPositions([]float64{0.3, 0.4})).To(Succeed())
			a := chain.UpdateTransforms()
			b := chain.UpdateTransforms()
			Expect(a).To(HaveLen(len(b)))
			for i := range a {
				Expect(a[i].ApproxEqual(b[i], 0)).To(BeTrue())
			}
		})

		It("does not refresh the cache on position changes", func() {
			chain.UpdateTransforms()
			before, _ := l1.WorldTransform()
			Expect(chain.SetJointPositions([]float64{1.0, 0.5})).To(Succeed())
			after, _ := l1.WorldTransform()
			Expect(after.ApproxEqual(before, 0)).To(BeTrue())
		})

		It("rejects a short vector without writing anything", func() {
			Expect(chain.SetJointPositions([]float64{0.2, 0.3})).To(Succeed())
			err := chain.SetJointPositions([]float64{1.0})
			Expect(err).To(MatchError(kinematics.ErrLengthMismatch))

			var lm *kinematics.LengthMismatchError
			Expect(err).To(BeAssignableToTypeOf(lm))
			Expect(chain.JointPositions()).To(Equal([]float64{0.2, 0.3}))
		})

		It("reports dof, names and positions", func() {
			Expect(chain.Dof()).To(Equal(2))
			Expect(chain.Len()).To(Equal(2))
			Expect(chain.JointNames()).To(Equal([]string{"l0", "l1"}))
			Expect(chain.Leaves()).To(HaveLen(1))
			Expect(chain.Limits()).To(HaveLen(2))
		})
	})

	Describe("traversal order", func() {
		var (
			tree  *kinematics.Tree
			names map[string]kinematics.Node
		)

		add := func(name string, typ kinematics.JointType, parent string) {
			n := tree.Add(kinematics.NewJoint(name, typ))
			if parent != "" {
				Expect(n.SetParent(names[parent])).To(Succeed())
			}
			names[name] = n
		}

		BeforeEach(func() {
			tree = kinematics.NewTree()
			names = map[string]kinematics.Node{}
			rz := kinematics.RotationalJoint(spatial.UnitZ)
			add("root", kinematics.FixedJoint(), "")
			add("a", rz, "root")
			add("a1", rz, "a")
			add("b", rz, "root")
			add("a2", kinematics.FixedJoint(), "a")
			add("b1", rz, "b")
		})

		It("is pre-order with children in stored order", func() {
			chain := tree.Chain()
			got := make([]string, 0)
			for _, n := range chain.Nodes() {
				got = append(got, n.Name())
			}
			Expect(got).To(Equal([]string{"root", "a", "a1", "a2", "b", "b1"}))
			Expect(chain.JointNames()).To(Equal([]string{"a", "a1", "b", "b1"}))
		})

		It("places every node after its parent", func() {
			chain := tree.Chain()
			index := map[kinematics.NodeID]int{}
			for i, n := range chain.Nodes() {
				index[n.ID()] = i
			}
			for _, n := range chain.Nodes() {
				if p, ok := n.Parent(); ok {
					Expect(index[p.ID()]).To(BeNumerically("<", index[n.ID()]))
				}
			}
		})

		It("aligns the position vector with the pose vector", func() {
			chain := tree.Chain()
			Expect(chain.SetJointPositions([]float64{0.1, 0.2, 0.3, 0.4})).To(Succeed())
			poses := chain.UpdateTransforms()
			for i, n := range chain.Nodes() {
				w, ok := n.WorldTransform()
				Expect(ok).To(BeTrue())
				Expect(poses[i].ApproxEqual(w, 0)).To(BeTrue())
			}
			for i, n := range chain.Movable() {
				Expect(position(n)).To(Equal([]float64{0.1, 0.2, 0.3, 0.4}[i]))
			}
		})

		It("stays stable until rebuilt", func() {
			chain := tree.Chain()
			first := chain.JointNames()
			Expect(chain.JointNames()).To(Equal(first))

			Expect(names["b"].SetParent(names["a1"])).To(Succeed())
			Expect(chain.Stale()).To(BeTrue())
			Expect(chain.JointNames()).To(Equal(first))
			Expect(chain.Validate()).To(MatchError(kinematics.ErrInvalidRelation))

			chain.Rebuild()
			Expect(chain.Stale()).To(BeFalse())
			Expect(chain.JointNames()).To(Equal([]string{"a", "a1", "b", "b1"}))
			got := make([]string, 0)
			for _, n := range chain.Nodes() {
				got = append(got, n.Name())
			}
			Expect(got).To(Equal([]string{"root", "a", "a1", "b", "b1", "a2"}))
		})

		It("builds sub-chains from an inner root", func() {
			sub := kinematics.FromRoot(names["b"])
			Expect(sub.JointNames()).To(Equal([]string{"b", "b1"}))

			full := tree.Chain()
			Expect(full.SetJointPositions([]float64{0, 0, math.Pi / 2, 0})).To(Succeed())
			full.UpdateTransforms()
			poses := sub.UpdateTransforms()
			wb, _ := names["b"].WorldTransform()
			Expect(poses[0].ApproxEqual(wb, 1e-12)).To(BeTrue())
		})

		It("visits shared subtrees once", func() {
			chain := kinematics.NewChain([]kinematics.Node{names["root"], names["a"]})
			Expect(chain.Len()).To(Equal(6))
		})

		It("reaches a root listed before its ancestor through the ancestor", func() {
			chain := kinematics.NewChain([]kinematics.Node{names["a1"], names["root"]})
			got := make([]string, 0)
			for _, n := range chain.Nodes() {
				got = append(got, n.Name())
			}
			Expect(got).To(Equal([]string{"root", "a", "a1", "a2", "b", "b1"}))
			Expect(chain.IndexOf(names["a1"])).To(Equal(2))
			Expect(chain.IndexOf(kinematics.Node{})).To(Equal(-1))
		})
	})

	Describe("mimic joints in bulk assignment", func() {
		It("skips dependents and keeps them derived", func() {
			tree := kinematics.NewTree()
			drive := tree.Add(kinematics.NewJoint("drive", kinematics.LinearJoint(spatial.UnitX)))
			follow := tree.Add(kinematics.NewJoint("follow", kinematics.LinearJoint(spatial.UnitX)))
			Expect(follow.SetParent(drive)).To(Succeed())
			Expect(follow.SetMimicParent(drive, kinematics.NewMimic(-1, 0))).To(Succeed())

			chain := tree.Chain()
			Expect(chain.Dof()).To(Equal(2))
			Expect(chain.SetJointPositions([]float64{0.25, 99})).To(Succeed())
			Expect(chain.JointPositions()).To(Equal([]float64{0.25, -0.25}))

			poses := chain.UpdateTransforms()
			Expect(poses[1].Translation().X).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Describe("SetJointPositions failure", func() {
		It("stops at the first failing joint", func() {
			tree := kinematics.NewTree()
			a := tree.Add(linearZ("a", 0, 1))
			b := tree.Add(linearZ("b", 0, 1))
			c := tree.Add(linearZ("c", 0, 1))
			Expect(b.SetParent(a)).To(Succeed())
			Expect(c.SetParent(b)).To(Succeed())

			chain := tree.Chain()
			err := chain.SetJointPositions([]float64{0.5, 3, 0.5})
			Expect(err).To(MatchError(kinematics.ErrOutOfLimits))
			Expect(chain.JointPositions()).To(Equal([]float64{0.5, 0, 0}))
		})

		It("clamps on request", func() {
			tree := kinematics.NewTree()
			a := tree.Add(linearZ("a", 0, 1))
			b := tree.Add(kinematics.NewJoint("b", kinematics.LinearJoint(spatial.UnitZ)))
			Expect(b.SetParent(a)).To(Succeed())

			chain := tree.Chain()
			Expect(chain.SetJointPositionsClamped([]float64{3, -7})).To(Succeed())
			Expect(chain.JointPositions()).To(Equal([]float64{1, -7}))
			Expect(chain.SetJointPositionsClamped(nil)).To(MatchError(kinematics.ErrLengthMismatch))
		})
	})

	Describe("Find", func() {
		var chain *kinematics.Chain

		BeforeEach(func() {
			tree := kinematics.NewTree()
			s := tree.Add(kinematics.NewJoint("shoulder", kinematics.RotationalJoint(spatial.UnitY)))
			e := tree.Add(kinematics.NewJoint("elbow", kinematics.RotationalJoint(spatial.UnitY)))
			Expect(e.SetParent(s)).To(Succeed())
			chain = tree.Chain()
		})

		It("finds by exact name", func() {
			n, err := chain.Find("elbow")
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Name()).To(Equal("elbow"))
		})

		It("suggests the closest name", func() {
			_, err := chain.Find("elbo")
			Expect(err).To(MatchError(kinematics.ErrJointNotFound))
			Expect(err.Error()).To(ContainSubstring(`did you mean "elbow"`))
		})

		It("does not suggest unrelated names", func() {
			_, err := chain.Find("gripper_finger")
			Expect(err).To(MatchError(kinematics.ErrJointNotFound))
			Expect(err.Error()).NotTo(ContainSubstring("did you mean"))
		})
	})

	Describe("Validate", func() {
		It("accepts a consistent chain", func() {
			tree := kinematics.NewTree()
			a := tree.Add(linearZ("a", 0, 1))
			b := tree.Add(linearZ("b", 0, 1))
			Expect(b.SetMimicParent(a, kinematics.DefaultMimic)).To(Succeed())
			Expect(tree.Chain().Validate()).To(Succeed())
		})

		It("collects every problem", func() {
			tree := kinematics.NewTree()
			tree.Add(kinematics.NewJoint("dup", kinematics.RotationalJoint(spatial.Zero)))
			tree.Add(kinematics.NewJoint("dup", kinematics.FixedJoint()))
			err := tree.Chain().Validate()
			Expect(err).To(MatchError(kinematics.ErrInvalidAxis))
			Expect(multierr.Errors(err)).To(HaveLen(2))
		})
	})

	It("composes a descendant root from its parent on the first update", func() {
		tree := kinematics.NewTree()
		a := tree.Add(kinematics.NewJointBuilder("a").Translation(spatial.Vec{Z: 1}).MustBuild())
		b := tree.Add(kinematics.NewJointBuilder("b").Translation(spatial.Vec{Z: 1}).MustBuild())
		Expect(b.SetParent(a)).To(Succeed())

		chain := kinematics.NewChain([]kinematics.Node{b, a})
		Expect(chain.IndexOf(a)).To(Equal(0))
		Expect(chain.IndexOf(b)).To(Equal(1))

		poses := chain.UpdateTransforms()
		Expect(poses[1].Translation().Z).To(BeNumerically("~", 2, 1e-12))
	})

	It("renders an indented tree", func() {
		tree := kinematics.NewTree()
		a := tree.Add(linearZ("a", 0, 1))
		b := tree.Add(linearZ("b", 0, 1))
		Expect(b.SetParent(a)).To(Succeed())
		Expect(b.SetMimicParent(a, kinematics.DefaultMimic)).To(Succeed())
		out := tree.Chain().String()
		Expect(out).To(ContainSubstring("a {linear"))
		Expect(out).To(ContainSubstring("    b {linear"))
		Expect(out).To(ContainSubstring("(mimics a)"))
	})
})
