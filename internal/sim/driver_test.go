package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/encsim/internal/config"
	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

func preset(name string) experiment.Encounter {
	enc, err := config.GetPreset(name).ToEncounter()
	Expect(err).NotTo(HaveOccurred())
	return enc
}

func simulate(enc experiment.Encounter) *sim.Result {
	res, err := experiment.Simulate(context.Background(), enc)
	Expect(err).NotTo(HaveOccurred())
	return res
}

// firstNMAC returns the first recorded tick inside the NMAC volume, or -1.
func firstNMAC(res *sim.Result) int {
	for i := 0; i < res.Len(); i++ {
		horz, vert := res.Separation(i)
		if horz < sim.NMACHorizontal && vert < sim.NMACVertical {
			return i
		}
	}
	return -1
}

var _ = Describe("Encounter driver", func() {
	Describe("history", func() {
		It("records one sample per tick up to and including the stop tick", func() {
			for _, name := range config.ListPresets() {
				enc := preset(name)
				res := simulate(enc)

				Expect(res.Len()).To(Equal(res.Stats.StopTick+1), name)
				Expect(res.Len()).To(BeNumerically("<=", enc.Config().Ticks()), name)
				Expect(res.Aircraft[1]).To(HaveLen(res.Len()), name)
				Expect(res.Stats.StopTime).To(Equal(float64(res.Stats.StopTick)*enc.Config().Constants.Dt), name)
			}
		})

		It("starts from the initial conditions at t=0", func() {
			enc := preset("crossing")
			res := simulate(enc)

			first := res.Aircraft[1][0]
			Expect(first.T).To(Equal(0.0))
			Expect(first.N).To(Equal(enc.Aircraft[1].Init[sim.N]))
			Expect(first.E).To(Equal(enc.Aircraft[1].Init[sim.E]))
			Expect(first.V).To(Equal(enc.Aircraft[1].Init[sim.V]))
		})

		It("is identical across reruns of the same encounter", func() {
			enc := preset("turning_conflict")
			a := simulate(enc)
			b := simulate(enc)

			Expect(a.Stats).To(Equal(b.Stats))
			Expect(a.Aircraft).To(Equal(b.Aircraft))
		})
	})

	Describe("termination", func() {
		It("runs the full duration in mode none", func() {
			enc := preset("overtake")
			res := simulate(enc)

			Expect(res.Stats.EarlyStop).To(BeFalse())
			Expect(res.Len()).To(Equal(401))
			Expect(res.Stats.StopTime).To(BeNumerically("~", 40, 1e-9))
		})

		It("stops on the first tick inside the NMAC volume", func() {
			res := simulate(preset("head_on"))

			Expect(res.Stats.NMAC).To(BeTrue())
			Expect(res.Stats.EarlyStop).To(BeTrue())
			Expect(res.Stats.StopTick).To(Equal(192))
			Expect(firstNMAC(res)).To(Equal(res.Stats.StopTick))
		})

		It("reports an NMAC caused by a commanded climb", func() {
			res := simulate(preset("climb_through"))

			Expect(res.Stats.NMAC).To(BeTrue())
			Expect(firstNMAC(res)).To(Equal(res.Stats.StopTick))
			Expect(res.Aircraft[1][res.Len()-1].H).To(BeNumerically(">", 10200))
		})

		It("waits for the continuation time after leaving the cylinder", func() {
			res := simulate(preset("crossing"))

			Expect(res.Stats.EarlyStop).To(BeTrue())
			Expect(res.Stats.OutsideCylinder).To(BeTrue())
			Expect(res.Stats.NMAC).To(BeFalse())

			// The last tick inside the cylinder is at least the continuation
			// before the stop.
			lastInside := -1
			for i := 0; i < res.Len(); i++ {
				horz, vert := res.Separation(i)
				if horz <= 6076 && vert <= 1000 {
					lastInside = i
				}
			}
			Expect(lastInside).To(BeNumerically(">", 0))
			Expect(res.Stats.StopTime - res.Aircraft[0][lastInside].T).To(BeNumerically(">=", 5))
		})

		It("never stops when the latch is required and the cylinder is not entered", func() {
			res := simulate(preset("parallel_miss"))

			Expect(res.Stats.EarlyStop).To(BeFalse())
			Expect(res.Len()).To(Equal(601))
			Expect(res.Stats.OutsideCylinder).To(BeTrue())
		})

		It("stops at the minimum time when starting outside with the latch off", func() {
			enc := preset("parallel_miss")
			enc.Options.Radius = 100
			enc.Options.HalfHeight = 100
			enc.Options.RequireLatch = false
			enc.Options.MinTime = 3

			res := simulate(enc)
			Expect(res.Stats.StopTick).To(Equal(30))
			Expect(res.Stats.StopTime).To(BeNumerically(">=", 3))
		})
	})

	Describe("limits", func() {
		aggressive := func() experiment.Encounter {
			cfg := config.GetPreset("turning_conflict")
			cfg.Aircraft[0].Commands = [][]float64{{0, 0, 10, 20}}
			cfg.Aircraft[1].Limits = cfg.Aircraft[0].Limits
			cfg.Aircraft[1].Init.Speed = 250
			cfg.Aircraft[1].Commands = [][]float64{{0, 0, -50, -20}}
			cfg.Encounter.Mode = "none"
			cfg.Duration = 60
			enc, err := cfg.ToEncounter()
			Expect(err).NotTo(HaveOccurred())
			return enc
		}

		It("keeps speed within [v_min, v_max)", func() {
			enc := aggressive()
			res := simulate(enc)

			for k, track := range res.Aircraft {
				lim := enc.Aircraft[k].Limits
				for _, s := range track {
					Expect(s.V).To(BeNumerically(">=", lim.VMin))
					Expect(s.V).To(BeNumerically("<", lim.VMax))
				}
			}
			last := res.Aircraft[1][res.Len()-1]
			Expect(last.V).To(Equal(enc.Aircraft[1].Limits.VMin))
		})

		It("keeps bank within the maximum bank angle", func() {
			res := simulate(aggressive())
			maxBank := sim.DefaultConstants().MaxBank

			for _, track := range res.Aircraft {
				for _, s := range track {
					Expect(math.Abs(s.Phi)).To(BeNumerically("<=", maxBank))
				}
			}
		})

		It("turns in the commanded direction", func() {
			res := simulate(aggressive())
			last := res.Len() - 1

			Expect(res.Aircraft[0][20].Phi).To(BeNumerically(">", 0))
			Expect(res.Aircraft[1][20].Phi).To(BeNumerically("<", 0))
			Expect(res.Aircraft[0][last].Psi).NotTo(Equal(0.0))
		})
	})

	Describe("FromArgs", func() {
		It("matches the same encounter built from a config file", func() {
			enc := preset("head_on")

			args := [][][]float64{}
			for _, ac := range enc.Aircraft {
				rows := make([][]float64, len(ac.Commands))
				for i, c := range ac.Commands {
					rows[i] = []float64{c.Time, c.ClimbRate, c.TurnRate, c.Accel}
				}
				init := append([]float64{0}, ac.Init...)
				args = append(args, [][]float64{init}, rows, [][]float64{ac.Limits.Vector()})
			}
			args = append(args, [][]float64{{enc.Duration}}, [][]float64{{2, 1e6, 1e6, 0, 0, 0}})

			fromArgs, err := experiment.FromArgs(args...)
			Expect(err).NotTo(HaveOccurred())

			a := simulate(enc)
			b := simulate(fromArgs)
			Expect(b.Stats).To(Equal(a.Stats))
			Expect(b.Aircraft).To(Equal(a.Aircraft))
		})
	})
})
