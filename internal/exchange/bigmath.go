package exchange

import "math/bits"

// uint128 is an unsigned 128-bit integer split into high and low 64-bit
// limbs. Go has no intrinsic 128-bit type, so the core builds one out of the
// math/bits primitives the same way it would reach for an intrinsic
// __uint128_t in a systems language: a two-limb struct with just enough
// operations (+, -, *, /, compare, narrow-with-overflow-detection) to carry
// the branch table's algebra.
type uint128 struct {
	hi uint64
	lo uint64
}

func (a uint128) cmp(b uint128) int {
	switch {
	case a.hi != b.hi:
		if a.hi < b.hi {
			return -1
		}
		return 1
	case a.lo != b.lo:
		if a.lo < b.lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (a uint128) gt(b uint128) bool { return a.cmp(b) > 0 }

func (a uint128) sub(b uint128) uint128 {
	lo, borrow := bits.Sub64(a.lo, b.lo, 0)
	hi, _ := bits.Sub64(a.hi, b.hi, borrow)
	return uint128{hi: hi, lo: lo}
}

func (a uint128) add(b uint128) uint128 {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi, _ := bits.Add64(a.hi, b.hi, carry)
	return uint128{hi: hi, lo: lo}
}

// addOverflows reports whether a+b would overflow 128 bits.
func (a uint128) addOverflows(b uint128) bool {
	_, carry := bits.Add64(a.lo, b.lo, 0)
	_, carry = bits.Add64(a.hi, b.hi, carry)
	return carry != 0
}

// fitsUint64 reports whether the value fits in 64 bits.
func (a uint128) fitsUint64() bool { return a.hi == 0 }

// divUint64 divides the 128-bit value by a nonzero uint64 divisor, returning
// the quotient as a uint128. The high limb is zero whenever the quotient
// fits in 64 bits; a quotient of 2^64 or more is reported as {hi: 1}, so
// callers detect overflow with fitsUint64.
func (a uint128) divUint64(d uint64) uint128 {
	if a.hi == 0 {
		return uint128{lo: a.lo / d}
	}
	if a.hi >= d {
		// The quotient is provably >= 2^64: bits.Div64 would panic with this
		// dividend, and the true result doesn't fit in 64 bits anyway, so
		// report it the same way callers detect any other overflow.
		return uint128{hi: 1}
	}
	q, _ := bits.Div64(a.hi, a.lo, d)
	return uint128{lo: q}
}

func min128(a, b uint128) uint128 {
	if a.gt(b) {
		return b
	}
	return a
}

// bigMultiplyUnsigned returns a*b computed without overflow as a uint128.
func bigMultiplyUnsigned(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	return uint128{hi: hi, lo: lo}
}

// bigMultiply returns a*b as a uint128. Both operands must be nonnegative;
// violating this precondition is a programming error in the caller, not a
// runtime condition, so it panics via ArithmeticError exactly like the other
// precondition checks in this package.
func bigMultiply(a, b int64) uint128 {
	if a < 0 || b < 0 {
		throwArithmetic("bigMultiply", "operands must be nonnegative, got a=%d b=%d", a, b)
	}
	return bigMultiplyUnsigned(uint64(a), uint64(b))
}

// bigDivideUnsigned computes floor(A*B/C) or ceil(A*B/C) in 128-bit space and
// reports whether the mathematical result fits in 64 bits.
func bigDivideUnsigned(a, b, c uint64, rounding roundingDirection) (result uint64, ok bool) {
	if c == 0 {
		throwArithmetic("bigDivide", "divisor must be positive")
	}
	product := bigMultiplyUnsigned(a, b)
	if rounding == roundUp {
		// product + (c - 1); detect the 128-bit overflow this addition could
		// cause before it happens.
		bias := uint128{lo: c - 1}
		if product.addOverflows(bias) {
			return 0, false
		}
		product = product.add(bias)
	}
	q := product.divUint64(c)
	return q.lo, q.fitsUint64()
}

// bigDivide computes floor(A*B/C) or ceil(A*B/C), returning ok=false if the
// mathematical result does not fit in a signed int64. Preconditions: A >= 0,
// B >= 0, C > 0.
func bigDivide(a, b, c int64, rounding roundingDirection) (result int64, ok bool) {
	if a < 0 || b < 0 || c <= 0 {
		throwArithmetic("bigDivide", "require A>=0, B>=0, C>0; got A=%d B=%d C=%d", a, b, c)
	}
	r, ok := bigDivideUnsigned(uint64(a), uint64(b), uint64(c), rounding)
	if !ok || r > uint64(maxInt64) {
		return 0, false
	}
	return int64(r), true
}

// bigDivideOrThrow is bigDivide but raises ArithmeticError on overflow. The
// core calls this only at points where the algebra proves overflow cannot
// occur; a thrown error here indicates a bug in the branch table, not a bad
// input.
func bigDivideOrThrow(a, b, c int64, rounding roundingDirection) int64 {
	result, ok := bigDivide(a, b, c, rounding)
	if !ok {
		throwArithmetic("bigDivideOrThrow", "overflow computing %d*%d/%d", a, b, c)
	}
	return result
}

// bigDivide128 computes floor(a/B) or ceil(a/B) for a dividend already in
// 128-bit space, returning ok=false on overflow of the narrowed result.
// Precondition: B > 0.
func bigDivide128(a uint128, b int64, rounding roundingDirection) (result int64, ok bool) {
	if b <= 0 {
		throwArithmetic("bigDivide128", "divisor must be positive, got %d", b)
	}
	divisor := uint64(b)
	if rounding == roundUp {
		bias := uint128{lo: divisor - 1}
		if a.addOverflows(bias) {
			return 0, false
		}
		a = a.add(bias)
	}
	q := a.divUint64(divisor)
	if !q.fitsUint64() || q.lo > uint64(maxInt64) {
		return 0, false
	}
	return int64(q.lo), true
}

// bigDivideOrThrow128 is bigDivide128 but raises ArithmeticError on overflow.
func bigDivideOrThrow128(a uint128, b int64, rounding roundingDirection) int64 {
	result, ok := bigDivide128(a, b, rounding)
	if !ok {
		throwArithmetic("bigDivideOrThrow128", "overflow computing %d:%d/%d", a.hi, a.lo, b)
	}
	return result
}

const maxInt64 = 1<<63 - 1
