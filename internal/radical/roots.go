package radical

// Isqrt returns floor(√n) for n >= 0 and -1 for negative n. It uses
// integer Newton iteration, no floating point.
func Isqrt(n int64) int64 {
	if n < 0 {
		return -1
	}
	if n < 2 {
		return n
	}
	x := n/2 + 1
	y := (x + n/x) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// IsPerfectSquare reports whether n = k² for some integer k
func IsPerfectSquare(n int64) bool {
	if n < 0 {
		return false
	}
	r := Isqrt(n)
	return r*r == n
}

// Icbrt returns the integer cube root of n rounded toward zero
func Icbrt(n int64) int64 {
	if n < 0 {
		return -Icbrt(-n)
	}
	if n < 2 {
		return n
	}
	// 2^21-1 is the largest cube root that fits in an int64.
	lo, hi := int64(0), int64(1)<<21-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if mid*mid*mid <= n {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// IsPerfectCube reports whether n = k³ for some integer k
func IsPerfectCube(n int64) bool {
	r := Icbrt(n)
	return r*r*r == n
}

// IsSquareFree reports whether no square greater than 1 divides n
func IsSquareFree(n int64) bool {
	if n < 1 {
		return false
	}
	r, _ := Simplify(n)
	return r.Coeff == 1
}
