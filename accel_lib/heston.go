package accel

import (
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type payoffSums struct {
	call float64
	put  float64
}

// priceHestonEuro prices a European call and put by Monte Carlo over the
// Heston dynamics with full-truncation Euler steps. Paths are split across
// compute units, each with its own stream seeded from k.Seed, so results
// depend only on the manifest and the arguments.
func priceHestonEuro(args KernelArgs, k emulatedKernel) Outputs {
	units := k.ComputeUnits
	sums := make([]payoffSums, units)

	var wg sync.WaitGroup
	wg.Add(units)
	for u := 0; u < units; u++ {
		go func(u int) {
			defer wg.Done()
			first := u * k.Paths / units
			last := (u + 1) * k.Paths / units
			sums[u] = simulateUnit(args, k.Steps, last-first, k.Seed+uint64(u))
		}(u)
	}
	wg.Wait()

	var total payoffSums
	for _, s := range sums {
		total.call += s.call
		total.put += s.put
	}

	discount := math.Exp(-float64(args.Rate)*float64(args.T)) / float64(k.Paths)
	return Outputs{
		Call: float32(total.call * discount),
		Put:  float32(total.put * discount),
	}
}

func simulateUnit(args KernelArgs, steps, paths int, seed uint64) payoffSums {
	var (
		theta = float64(args.Theta)
		kappa = float64(args.Kappa)
		xi    = float64(args.Xi)
		rho   = float64(args.Rho)
		rate  = float64(args.Rate)
		s0    = float64(args.S0)
		k     = float64(args.K)
		vol   = float64(args.Volatility)
	)
	dt := float64(args.T) / float64(steps)
	rhoBar := math.Sqrt(1 - rho*rho)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}

	var sums payoffSums
	for p := 0; p < paths; p++ {
		logS := math.Log(s0)
		v := vol * vol
		for i := 0; i < steps; i++ {
			z1 := normal.Rand()
			z2 := rho*z1 + rhoBar*normal.Rand()

			vPos := math.Max(v, 0)
			sqrtVdt := math.Sqrt(vPos * dt)
			logS += (rate-0.5*vPos)*dt + sqrtVdt*z1
			v += kappa*(theta-vPos)*dt + xi*sqrtVdt*z2
		}
		sT := math.Exp(logS)
		sums.call += math.Max(sT-k, 0)
		sums.put += math.Max(k-sT, 0)
	}
	return sums
}
