package exchange

// calculateOfferValue rescales one side's effective size to sheep terms
// after applying its two limits. If we were working in arbitrary precision
// arithmetic, the value of a wheat offer in terms of sheep would be
// min(maxSend*price, maxReceive); multiplying through by the price's
// denominator keeps every intermediate an integer:
//
//	min(maxSend*priceN, maxReceive*priceD)
//
// calculateOfferValue is called once for the wheat side (priceN, priceD in
// their natural order) and once for the sheep side (priceN and priceD
// swapped), so that the two results are directly comparable in sheep terms.
func calculateOfferValue(priceN, priceD int32, maxSend, maxReceive int64) uint128 {
	sendValue := bigMultiply(maxSend, int64(priceN))
	receiveValue := bigMultiply(maxReceive, int64(priceD))
	return min128(sendValue, receiveValue)
}

// offerValues computes the rescaled wheat-side and sheep-side values used to
// decide which of the two offers is larger (see decideResidence).
func offerValues(price Price, limits Limits) (wheatValue, sheepValue uint128) {
	wheatValue = calculateOfferValue(price.N, price.D, limits.MaxWheatSend, limits.MaxSheepReceive)
	sheepValue = calculateOfferValue(price.D, price.N, limits.MaxSheepSend, limits.MaxWheatReceive)
	return wheatValue, sheepValue
}

// decideResidence reports which offer is larger once rescaled to a common
// unit. The larger offer stays resident in the book, partially filled; the
// smaller one is fully consumed and removed.
func decideResidence(price Price, limits Limits) (wheatStays bool, wheatValue, sheepValue uint128) {
	wheatValue, sheepValue = offerValues(price, limits)
	return wheatValue.gt(sheepValue), wheatValue, sheepValue
}
