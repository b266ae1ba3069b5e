package models

// HestonParams holds the Heston model inputs of one pricing run.
type HestonParams struct {
	Theta      float64 `yaml:"theta"`      // long-run variance
	Kappa      float64 `yaml:"kappa"`      // mean-reversion rate of the variance
	Xi         float64 `yaml:"xi"`         // volatility of volatility
	Rho        float64 `yaml:"rho"`        // correlation between price and variance
	S0         float64 `yaml:"s0"`         // spot price
	K          float64 `yaml:"k"`          // strike price
	Rate       float64 `yaml:"rate"`       // risk-free rate
	Volatility float64 `yaml:"volatility"` // initial volatility
	T          float64 `yaml:"t"`          // time to maturity in years
}

// DefaultHestonParams returns the parameter set the kernel is calibrated against.
func DefaultHestonParams() HestonParams {
	return HestonParams{
		Theta:      0.019,
		Kappa:      6.21,
		Xi:         0.61,
		Rho:        -0.7,
		S0:         100,
		K:          100,
		Rate:       0.0319,
		Volatility: 0.10201,
		T:          1.0,
	}
}

// Reference holds optional reference prices used for error reporting.
type Reference struct {
	Call    float64
	Put     float64
	HasCall bool
	HasPut  bool
}

// OptionPrices is the pair of prices produced by one kernel run.
type OptionPrices struct {
	Call float64
	Put  float64
}
