package exchange

// priceErrorThresholdK is 100/threshold for a 1% maximum relative error
// between the nominal price and the price actually realized by a cross.
const priceErrorThresholdK = 100

// CheckPriceErrorBound reports whether the realized effective price
// sheepSend/wheatReceive lies within 1% of the nominal price.
//
// Starting from abs(price - effPrice) <= price/K and clearing denominators
// (price.n and price.d are int32, so none of these products overflow a
// 64-bit intermediate before the final 128-bit multiply):
//
//	abs(K*price.n*wheatReceive - K*price.d*sheepSend) <= price.n*wheatReceive
//
// If canFavorWheat is true and the sheep side overpaid relative to the
// nominal price (favoring the wheat seller), the bound is waived
// unconditionally: path payments may favor the wheat side by an unbounded
// amount because the caller enforces its own sendMax/destMin bound on the
// sheep side of the overall payment.
func CheckPriceErrorBound(price Price, wheatReceive, sheepSend int64, canFavorWheat bool) bool {
	errN := int64(priceErrorThresholdK) * int64(price.N)
	errD := int64(priceErrorThresholdK) * int64(price.D)

	lhs := bigMultiply(errN, wheatReceive)
	rhs := bigMultiply(errD, sheepSend)

	if canFavorWheat && rhs.gt(lhs) {
		return true
	}

	var absDiff uint128
	if lhs.gt(rhs) {
		absDiff = lhs.sub(rhs)
	} else {
		absDiff = rhs.sub(lhs)
	}
	cap := bigMultiply(int64(price.N), wheatReceive)
	return !absDiff.gt(cap)
}
