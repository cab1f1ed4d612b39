package exchange

// CrossWithoutThreshold computes (wheatReceived, sheepSent, wheatStays) from
// the four limits, price, and rounding mode, without applying the 1%
// price-error policy. It is exported for formal verification and for
// callers — such as path payment — that need the raw algebraic output
// before ApplyThresholds runs.
//
// The quantities wheatValue and sheepValue computed by decideResidence play
// a central role below. In arbitrary-precision arithmetic, the value of the
// wheat offer in terms of sheep is min(maxWheatSend*price, maxSheepReceive),
// and the value of the sheep offer in terms of sheep is
// min(maxWheatReceive*price, maxSheepSend). Multiplying both through by
// price.D turns them into the integers wheatValue and sheepValue, and the
// wheat offer is the larger of the two exactly when wheatValue > sheepValue.
//
// Each branch below chooses its rounding directions so that (a) neither
// output exceeds its own min(maxSend, maxReceive) limit, and (b) the
// realized effective price sheepSent/wheatReceived is biased against
// whichever side remains resident in the book. Proving (a) also proves that
// every bigDivideOrThrow call in this function is safe: the caller never
// sees an ArithmeticError from this function unless the branch table itself
// has a bug.
func CrossWithoutThreshold(price Price, limits Limits, mode RoundingMode) CrossingResult {
	if err := price.Validate(); err != nil {
		throwArithmetic("CrossWithoutThreshold", "%v", err)
	}
	if err := limits.Validate(); err != nil {
		throwArithmetic("CrossWithoutThreshold", "%v", err)
	}

	wheatStays, wheatValue, sheepValue := decideResidence(price, limits)

	var wheatReceive, sheepSend int64
	switch {
	case wheatStays && mode == RoundingPathPaymentStrictSend:
		wheatReceive = bigDivideOrThrow128(sheepValue, int64(price.N), roundDown)
		sheepSend = minInt64(limits.MaxSheepSend, limits.MaxSheepReceive)

	case wheatStays && (price.N > price.D || mode == RoundingPathPaymentStrictReceive):
		// Wheat is more valuable per unit, or the path payment has fixed the
		// amount of wheat received: derive wheatReceive from sheepValue and
		// round sheepSend up so the wheat seller is favored.
		wheatReceive = bigDivideOrThrow128(sheepValue, int64(price.N), roundDown)
		sheepSend = bigDivideOrThrow(wheatReceive, int64(price.N), int64(price.D), roundUp)

	case wheatStays:
		// Sheep is more valuable per unit (price.N <= price.D): derive
		// sheepSend from sheepValue and round wheatReceive down.
		sheepSend = bigDivideOrThrow128(sheepValue, int64(price.D), roundDown)
		wheatReceive = bigDivideOrThrow(sheepSend, int64(price.D), int64(price.N), roundDown)

	case price.N > price.D:
		// Wheat side is fully consumed and wheat is more valuable per unit.
		wheatReceive = bigDivideOrThrow128(wheatValue, int64(price.N), roundDown)
		sheepSend = bigDivideOrThrow(wheatReceive, int64(price.N), int64(price.D), roundDown)

	default:
		// Wheat side is fully consumed and sheep is more valuable per unit.
		sheepSend = bigDivideOrThrow128(wheatValue, int64(price.D), roundDown)
		wheatReceive = bigDivideOrThrow(sheepSend, int64(price.D), int64(price.N), roundUp)
	}

	if wheatReceive < 0 || wheatReceive > minInt64(limits.MaxWheatReceive, limits.MaxWheatSend) {
		throwArithmetic("CrossWithoutThreshold", "wheatReceive %d out of bounds for limits %+v", wheatReceive, limits)
	}
	if sheepSend < 0 || sheepSend > minInt64(limits.MaxSheepReceive, limits.MaxSheepSend) {
		throwArithmetic("CrossWithoutThreshold", "sheepSend %d out of bounds for limits %+v", sheepSend, limits)
	}

	return CrossingResult{WheatReceived: wheatReceive, SheepSent: sheepSend, WheatStays: wheatStays}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
