package kinematics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

var _ = Describe("Node", func() {
	var (
		tree   *kinematics.Tree
		j0, j1 kinematics.Node
	)

	BeforeEach(func() {
		tree = kinematics.NewTree()
		j0 = tree.Add(linearZ("j0", 0, 2))
		j1 = tree.Add(linearZ("j1", 0, 2))
	})

	Describe("mimic propagation", func() {
		BeforeEach(func() {
			Expect(j1.SetMimicParent(j0, kinematics.NewMimic(1.5, 0.1))).To(Succeed())
		})

		It("starts both joints at zero", func() {
			Expect(position(j0)).To(Equal(0.0))
			Expect(position(j1)).To(Equal(0.0))
		})

		It("drives the dependent joint", func() {
			Expect(j0.SetPosition(1.0)).To(Succeed())
			Expect(position(j0)).To(Equal(1.0))
			Expect(position(j1)).To(BeNumerically("~", 1.6, 1e-12))
		})

		It("ignores direct writes to the dependent joint", func() {
			Expect(j0.SetPosition(1.0)).To(Succeed())
			for _, q := range []float64{0.0, 1.9, -5, 100} {
				Expect(j1.SetPosition(q)).To(Succeed())
				Expect(position(j1)).To(BeNumerically("~", 1.6, 1e-12))
			}
		})

		It("records both sides of the relation", func() {
			p, ok := j1.MimicParent()
			Expect(ok).To(BeTrue())
			Expect(p.ID()).To(Equal(j0.ID()))

			children := j0.MimicChildren()
			Expect(children).To(HaveLen(1))
			Expect(children[0].Node.ID()).To(Equal(j1.ID()))
			Expect(children[0].Mimic).To(Equal(kinematics.NewMimic(1.5, 0.1)))
		})

		It("propagates the dependent joint's limit failure", func() {
			// 1.5*1.5 + 0.1 = 2.35 exceeds j1's upper limit
			err := j0.SetPosition(1.5)
			Expect(err).To(MatchError(kinematics.ErrOutOfLimits))
			Expect(err.Error()).To(ContainSubstring("j1"))
			Expect(position(j0)).To(Equal(1.5))
			Expect(position(j1)).To(Equal(0.0))
		})

		It("keeps earlier mimic children when a later one fails", func() {
			j2 := tree.Add(linearZ("j2", 0, 0.5))
			Expect(j2.SetMimicParent(j0, kinematics.DefaultMimic)).To(Succeed())

			err := j0.SetPosition(1.0)
			Expect(err).To(MatchError(kinematics.ErrOutOfLimits))
			Expect(position(j0)).To(Equal(1.0))
			Expect(position(j1)).To(BeNumerically("~", 1.6, 1e-12))
			Expect(position(j2)).To(Equal(0.0))
		})

		It("removes the stale reverse entry on rebind", func() {
			j2 := tree.Add(linearZ("j2", 0, 2))
			Expect(j1.SetMimicParent(j2, kinematics.DefaultMimic)).To(Succeed())

			Expect(j0.MimicChildren()).To(BeEmpty())
			Expect(j2.MimicChildren()).To(HaveLen(1))

			Expect(j0.SetPosition(1.0)).To(Succeed())
			Expect(position(j1)).To(Equal(0.0))
			Expect(j2.SetPosition(0.4)).To(Succeed())
			Expect(position(j1)).To(BeNumerically("~", 0.4, 1e-12))
		})

		It("can be cleared", func() {
			j1.ClearMimicParent()
			_, ok := j1.MimicParent()
			Expect(ok).To(BeFalse())
			Expect(j0.MimicChildren()).To(BeEmpty())
			Expect(j1.SetPosition(0.3)).To(Succeed())
			Expect(position(j1)).To(Equal(0.3))
		})

		It("rejects mimic loops", func() {
			Expect(j0.SetMimicParent(j1, kinematics.DefaultMimic)).To(MatchError(kinematics.ErrInvalidRelation))
			Expect(j0.SetMimicParent(j0, kinematics.DefaultMimic)).To(MatchError(kinematics.ErrInvalidRelation))
		})

		It("is independent of the structural tree", func() {
			Expect(j0.SetParent(j1)).To(Succeed())
			Expect(j0.SetPosition(0.5)).To(Succeed())
			Expect(position(j1)).To(BeNumerically("~", 0.85, 1e-12))
		})
	})

	Describe("structural links", func() {
		It("links parent and child", func() {
			Expect(j1.SetParent(j0)).To(Succeed())
			p, ok := j1.Parent()
			Expect(ok).To(BeTrue())
			Expect(p.Name()).To(Equal("j0"))
			Expect(j0.Children()).To(HaveLen(1))
			Expect(tree.Roots()).To(HaveLen(1))
		})

		It("moves a child between parents", func() {
			j2 := tree.Add(linearZ("j2", 0, 2))
			Expect(j2.SetParent(j0)).To(Succeed())
			Expect(j2.SetParent(j1)).To(Succeed())
			Expect(j0.Children()).To(BeEmpty())
			Expect(j1.Children()).To(HaveLen(1))
		})

		It("rejects cycles", func() {
			Expect(j1.SetParent(j0)).To(Succeed())
			Expect(j0.SetParent(j1)).To(MatchError(kinematics.ErrInvalidRelation))
			Expect(j0.SetParent(j0)).To(MatchError(kinematics.ErrInvalidRelation))
		})

		It("rejects nodes from another tree", func() {
			other := kinematics.NewTree().Add(linearZ("x", 0, 1))
			Expect(j0.SetParent(other)).To(MatchError(kinematics.ErrInvalidRelation))
			Expect(j0.SetMimicParent(other, kinematics.DefaultMimic)).To(MatchError(kinematics.ErrInvalidRelation))
		})

		It("detaches into a root", func() {
			Expect(j1.SetParent(j0)).To(Succeed())
			j1.Detach()
			_, ok := j1.Parent()
			Expect(ok).To(BeFalse())
			Expect(tree.Roots()).To(HaveLen(2))
		})
	})

	Describe("shared state", func() {
		It("is observed through every handle", func() {
			again, ok := tree.Node(j0.ID())
			Expect(ok).To(BeTrue())
			Expect(again.SetPosition(0.7)).To(Succeed())
			Expect(position(j0)).To(Equal(0.7))

			chain := tree.Chain()
			Expect(position(chain.Nodes()[0])).To(Equal(0.7))
		})

		It("exposes a copy of the limits", func() {
			l := j0.Limits()
			l.Max = 100
			Expect(j0.Limits().Max).To(Equal(2.0))
		})
	})

	Describe("ParentWorldTransform", func() {
		It("is identity for a root", func() {
			t, ok := j0.ParentWorldTransform()
			Expect(ok).To(BeTrue())
			Expect(t.ApproxEqual(spatial.Identity(), 1e-12)).To(BeTrue())
		})

		It("reads the parent's cache without computing it", func() {
			Expect(j1.SetParent(j0)).To(Succeed())
			_, ok := j1.ParentWorldTransform()
			Expect(ok).To(BeFalse())

			tree.Chain().UpdateTransforms()
			_, ok = j1.ParentWorldTransform()
			Expect(ok).To(BeTrue())
		})
	})
})
