package exchange

// ExchangeV10 is the public entry point of the crossing core; the two
// stages it composes (CrossWithoutThreshold and ApplyThresholds) are
// exported as well. Given a price and the four limits, it computes the exact integer
// quantities to transfer between the wheat and sheep sides of a cross,
// applying the 1%-price-error policy appropriate to the rounding mode.
//
// ExchangeV10 provides three guarantees when crossing two offers:
//   - Of the two offers, the one that is larger after rescaling to a common
//     unit always stays resident in the book; the smaller one is always
//     fully consumed and removed.
//   - When they cross, the rounding error favors the offer that remains in
//     the book.
//   - The rounding error never favors either party by more than 1%, except
//     for path payment, where the offer in the book may be favored by an
//     arbitrary amount. If the 1% bound would otherwise be exceeded under
//     NORMAL, no trade occurs and the caller removes the smaller offer.
//
// The V10 suffix is a protocol-version tag carried over from the ledger
// this core was adapted from; it has no meaning here beyond identifying
// which crossing rules this function implements.
func ExchangeV10(price Price, limits Limits, mode RoundingMode) CrossingResult {
	before := CrossWithoutThreshold(price, limits, mode)
	return ApplyThresholds(price, before.WheatReceived, before.SheepSent, before.WheatStays, mode)
}
