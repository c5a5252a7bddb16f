package apriori

import "fmt"

// Support returns count/total.
func Support(count, total int) (float64, error) {
	if total <= 0 {
		return 0, invariant("support", fmt.Sprintf("total transaction count is %d", total), nil)
	}
	return float64(count) / float64(total), nil
}

// Confidence returns the conditional frequency of the union given the
// antecedent, computed from raw counts so ratios of equal counts are exact.
func Confidence(unionCount, antecedentCount int) (float64, error) {
	if antecedentCount <= 0 {
		return 0, invariant("confidence", "antecedent support is zero", nil)
	}
	if unionCount > antecedentCount {
		return 0, invariant("confidence",
			fmt.Sprintf("union count %d exceeds antecedent count %d", unionCount, antecedentCount), nil)
	}
	return float64(unionCount) / float64(antecedentCount), nil
}

// Lift returns confidence / support(consequent).
func Lift(confidence, consequentSupport float64) (float64, error) {
	if consequentSupport <= 0 {
		return 0, invariant("lift", "consequent support is zero", nil)
	}
	return confidence / consequentSupport, nil
}

// Leverage returns support(A∪C) − support(A)·support(C).
func Leverage(unionSupport, antecedentSupport, consequentSupport float64) float64 {
	return unionSupport - antecedentSupport*consequentSupport
}
