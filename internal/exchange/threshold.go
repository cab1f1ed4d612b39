package exchange

// ApplyThresholds applies the rounding-mode-dependent policy on a crossing
// result produced by CrossWithoutThreshold: it re-verifies that rounding
// favored the correct side, enforces the 1% price-error bound (or the
// asymmetric path-payment variant of it), and resolves the zero-trade edge
// cases around PATH_PAYMENT_STRICT_SEND.
func ApplyThresholds(price Price, wheatReceive, sheepSend int64, wheatStays bool, mode RoundingMode) CrossingResult {
	if wheatReceive > 0 && sheepSend > 0 {
		wheatReceiveValue := bigMultiply(wheatReceive, int64(price.N))
		sheepSendValue := bigMultiply(sheepSend, int64(price.D))

		// CrossWithoutThreshold guarantees that if wheat stays, the wheat
		// seller is favored, and if sheep stays, the sheep seller is
		// favored. This is defense in depth: the proofs accompanying the
		// branch table show it cannot fail.
		if wheatStays && sheepSendValue.cmp(wheatReceiveValue) < 0 {
			throwArithmetic("ApplyThresholds", "favored sheep seller when wheat stays")
		}
		if !wheatStays && sheepSendValue.cmp(wheatReceiveValue) > 0 {
			throwArithmetic("ApplyThresholds", "favored wheat seller when sheep stays")
		}

		if mode == RoundingNormal {
			// Both sellers must get a price no more than 1% worse than the
			// price crossed at, or no trade occurs.
			if !CheckPriceErrorBound(price, wheatReceive, sheepSend, false) {
				wheatReceive, sheepSend = 0, 0
			}
		} else {
			// The wheat seller may be favored arbitrarily, since path
			// payment enforces its own sendMax/destMin on the overall
			// route. The sheep seller must still get a price no more than
			// 1% worse than the price crossed at; the caller was required
			// to have pre-adjusted the offer so that this holds.
			if !CheckPriceErrorBound(price, wheatReceive, sheepSend, true) {
				throwArithmetic("ApplyThresholds", "exceeded price error bound")
			}
		}
	} else {
		switch mode {
		case RoundingPathPaymentStrictSend:
			// Strict-send path payment may legitimately sell sheep for zero
			// wheat to hit its fixed send amount across later legs, but it
			// must never send zero sheep while crossing this offer.
			if sheepSend == 0 {
				throwArithmetic("ApplyThresholds", "strict-send crossing produced zero sheep sent")
			}
		default:
			// The proof accompanying CrossWithoutThreshold shows that under
			// NORMAL and PATH_PAYMENT_STRICT_RECEIVE, wheatReceive == 0 iff
			// sheepSend == 0 already. Reset explicitly for clarity.
			wheatReceive, sheepSend = 0, 0
		}
	}

	return CrossingResult{WheatReceived: wheatReceive, SheepSent: sheepSend, WheatStays: wheatStays}
}
