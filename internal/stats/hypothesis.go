package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ZTestResult holds a two-proportion z-test outcome.
type ZTestResult struct {
	Prop1  float64
	Prop2  float64
	Z      float64
	PValue float64 // two-sided
}

// TwoProportionZTest tests whether two binomial proportions differ, using
// the pooled standard error. successes1/n1 and successes2/n2 are the two
// samples.
func TwoProportionZTest(successes1, n1, successes2, n2 int) (ZTestResult, error) {
	if n1 <= 0 || n2 <= 0 {
		return ZTestResult{}, fmt.Errorf("sample sizes must be positive, got %d and %d", n1, n2)
	}
	if successes1 < 0 || successes1 > n1 || successes2 < 0 || successes2 > n2 {
		return ZTestResult{}, fmt.Errorf("success counts out of range")
	}

	p1 := float64(successes1) / float64(n1)
	p2 := float64(successes2) / float64(n2)
	pooled := float64(successes1+successes2) / float64(n1+n2)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 {
		return ZTestResult{}, fmt.Errorf("zero pooled standard error")
	}

	z := (p1 - p2) / se
	pValue := 2 * distuv.UnitNormal.Survival(math.Abs(z))

	return ZTestResult{Prop1: p1, Prop2: p2, Z: z, PValue: pValue}, nil
}

// ANOVAResult holds a one-way ANOVA outcome.
type ANOVAResult struct {
	F       float64
	PValue  float64
	DFGroup int
	DFError int
}

// OneWayANOVA tests whether the group means differ, for two or more
// groups of observations.
func OneWayANOVA(groups ...[]float64) (ANOVAResult, error) {
	if len(groups) < 2 {
		return ANOVAResult{}, fmt.Errorf("need at least two groups, got %d", len(groups))
	}

	n := 0
	grandSum := 0.0
	for i, g := range groups {
		if len(g) == 0 {
			return ANOVAResult{}, fmt.Errorf("group %d is empty", i)
		}
		n += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(n)

	ssBetween := 0.0
	ssWithin := 0.0
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		d := mean - grandMean
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			r := v - mean
			ssWithin += r * r
		}
	}

	dfGroup := len(groups) - 1
	dfError := n - len(groups)
	if dfError <= 0 {
		return ANOVAResult{}, fmt.Errorf("not enough observations for ANOVA")
	}
	if ssWithin == 0 {
		return ANOVAResult{}, fmt.Errorf("zero within-group variance")
	}

	f := (ssBetween / float64(dfGroup)) / (ssWithin / float64(dfError))
	dist := distuv.F{D1: float64(dfGroup), D2: float64(dfError)}
	pValue := dist.Survival(f)

	return ANOVAResult{F: f, PValue: pValue, DFGroup: dfGroup, DFError: dfError}, nil
}
