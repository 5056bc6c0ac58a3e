// Package edge locates the boundaries of the non-blank run in a projection
// profile.
//
// A profile is a 1-D slice of non-negative sums, one per column or row of an
// image. The finders assume the profile is made of at most three zones: a
// leading zero run, a contiguous non-zero run and a trailing zero run. Under
// that assumption the boundary can be found by bisection in O(log n).
//
// Profiles that break the assumption (an isolated non-zero value inside a
// blank margin, or a zero gap inside the content) are not detected. Find then
// returns the boundary of whichever non-zero run the bisection lands in, so
// it is sensitive to salt-and-pepper noise in the margins. FindLinear scans
// the whole profile and returns the exact first/last non-zero index.
package edge

// Find returns the index of the first non-zero entry of arr, or of the last
// one when reverse is set.
//
// If arr holds no non-zero entry the result is n-1 going forward and 0 going
// backward; callers must check for an all-zero profile themselves (see
// Bounds). A single-element profile always yields 0. An empty profile yields
// -1.
func Find(arr []uint64, reverse bool) int {
	if len(arr) == 0 {
		return -1
	}

	left, right := 0, len(arr)-1
	for right > left {
		if reverse {
			// upper midpoint so that left = mid always makes progress
			mid := right - (right-left)/2
			if arr[mid] != 0 {
				left = mid
			} else {
				right = mid - 1
			}
		} else {
			mid := left + (right-left)/2
			if arr[mid] != 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
	}

	if reverse {
		return left
	}
	return right
}

// FindLinear has the same contract as Find but scans every entry, so it
// reports the true first (or last) non-zero index for any profile.
func FindLinear(arr []uint64, reverse bool) int {
	n := len(arr)
	if n == 0 {
		return -1
	}

	if reverse {
		for i := n - 1; i >= 0; i-- {
			if arr[i] != 0 {
				return i
			}
		}
		return 0
	}

	for i := 0; i < n; i++ {
		if arr[i] != 0 {
			return i
		}
	}
	return n - 1
}

// Finder is the signature shared by Find and FindLinear.
type Finder func(arr []uint64, reverse bool) int

// Bounds returns the half-open range [lo, hi) of the non-blank run of arr
// using the bisecting finder. ok is false when arr is empty or all zero.
func Bounds(arr []uint64) (lo, hi int, ok bool) {
	return BoundsWith(Find, arr)
}

// BoundsWith is Bounds with an explicit finder.
//
// A non-zero value at either end of arr pins that side of the range to the
// end, so content touching the image border is never clipped. If the finder
// produces an inverted range, which bisection can do on a profile with
// non-zero values only near its two ends, the range is recomputed with
// FindLinear.
func BoundsWith(find Finder, arr []uint64) (lo, hi int, ok bool) {
	if IsBlank(arr) {
		return 0, 0, false
	}
	n := len(arr)

	if arr[0] != 0 {
		lo = 0
	} else {
		lo = find(arr, false)
	}
	if arr[n-1] != 0 {
		hi = n
	} else {
		hi = find(arr, true) + 1
	}

	if lo >= hi {
		lo, hi = FindLinear(arr, false), FindLinear(arr, true)+1
	}
	return lo, hi, true
}

// IsBlank reports whether arr has no non-zero entry.
func IsBlank(arr []uint64) bool {
	for _, v := range arr {
		if v != 0 {
			return false
		}
	}
	return true
}
