package micromag_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spinchain/internal/micromag"
)

type countingObserver struct {
	calls   int
	changes []float64
}

func (o *countingObserver) OnStep(_ int, maxChange float64, _ *micromag.Chain) {
	o.calls++
	o.changes = append(o.changes, maxChange)
}

func expectUnitNorms(s micromag.Snapshot) {
	for _, m := range s {
		Expect(m.Norm()).To(BeNumerically("~", 1.0, 1e-9))
	}
}

var _ = Describe("Relaxer", func() {
	var (
		c      micromag.Constants
		quiet  *slog.Logger
		newRun func(rule micromag.UpdateRule) *micromag.Relaxer
	)

	BeforeEach(func() {
		c = micromag.DefaultConstants()
		quiet = slog.New(slog.NewTextHandler(io.Discard, nil))
		newRun = func(rule micromag.UpdateRule) *micromag.Relaxer {
			r := micromag.NewRelaxer(c, rule)
			r.SetLogger(quiet)
			return r
		}
	})

	Context("near the ground state", func() {
		BeforeEach(func() {
			c.ExternalField = micromag.Vec3{1, 0, 0}
			c.TimeStep = 5e-7
		})

		It("converges within the iteration cap", func() {
			chain, err := micromag.NewChain(20, micromag.EasyAxis(c.EasyAxis, 0.01))
			Expect(err).NotTo(HaveOccurred())

			result, err := newRun(micromag.LLG{}).Minimize(context.Background(), chain)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(micromag.StatusConverged))
			Expect(result.Iterations).To(BeNumerically("<=", c.MaxIterations))
			Expect(result.MaxChange).To(BeNumerically("<", c.Tolerance))
			Expect(result.FinalEnergy).To(BeNumerically("<=", result.InitialEnergy))
			Expect(result.EnergyChange).To(BeNumerically("<=", 0))
			expectUnitNorms(result.Final)
		})

		It("stays converged over further steps", func() {
			chain, _ := micromag.NewChain(20, micromag.EasyAxis(c.EasyAxis, 0.01))
			result, err := newRun(micromag.LLG{}).Minimize(context.Background(), chain)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Converged()).To(BeTrue())

			prev := c.Tolerance
			for i := 0; i < 5; i++ {
				change, err := micromag.Step(chain, c, micromag.LLG{})
				Expect(err).NotTo(HaveOccurred())
				Expect(change).To(BeNumerically("<", c.Tolerance))
				Expect(change).To(BeNumerically("<=", prev))
				prev = change
			}
		})

		It("stops on the first step when already aligned", func() {
			chain, _ := micromag.NewChain(10, micromag.Uniform(c.EasyAxis))
			result, err := newRun(micromag.LLG{}).Minimize(context.Background(), chain)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(micromag.StatusConverged))
			Expect(result.Iterations).To(Equal(1))
			Expect(result.History).To(Equal([]float64{0}))
		})
	})

	It("terminates a random damping-only run with unit moments", func() {
		chain, err := micromag.NewChain(50, micromag.Random(7))
		Expect(err).NotTo(HaveOccurred())

		result, err := newRun(micromag.Damping{}).Minimize(context.Background(), chain)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Or(
			Equal(micromag.StatusConverged),
			Equal(micromag.StatusMaxIterations),
		))
		Expect(result.Final).To(HaveLen(50))
		expectUnitNorms(result.Final)
	})

	It("reports the iteration cap without an error", func() {
		c.MaxIterations = 5
		chain, _ := micromag.NewChain(10, micromag.Helix())
		obs := &countingObserver{}
		r := newRun(micromag.Damping{})
		r.AddObserver(obs)

		result, err := r.Minimize(context.Background(), chain)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(micromag.StatusMaxIterations))
		Expect(result.Status.String()).To(Equal("max_iterations"))
		Expect(result.Iterations).To(Equal(5))
		Expect(result.History).To(HaveLen(5))
		Expect(obs.calls).To(Equal(5))
		Expect(obs.changes).To(Equal(result.History))
		for _, ch := range result.History {
			Expect(ch).To(BeNumerically(">=", 0))
		}
	})

	It("stops when the context is canceled", func() {
		chain, _ := micromag.NewChain(10, micromag.Helix())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newRun(micromag.LLG{}).Minimize(ctx, chain)
		Expect(err).To(MatchError(micromag.ErrContextCanceled))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("returns a size-N snapshot of triples", func() {
		c.MaxIterations = 3
		chain, _ := micromag.NewChain(13, micromag.Helix())
		result, err := newRun(micromag.LLG{}).Minimize(context.Background(), chain)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Final).To(HaveLen(13))
		Expect(chain.Magnetizations()).To(Equal(result.Final))
	})
})
