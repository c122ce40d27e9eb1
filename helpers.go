package gofractal

func IntMin(a int, elements ...int) int {
	res := a
	for _, val := range elements {
		if val < res {
			res = val
		}
	}
	return res
}

func IntMax(a int, elements ...int) int {
	res := a
	for _, val := range elements {
		if val > res {
			res = val
		}
	}
	return res
}

// IntClamp returns val restricted to the interval [low, high]. If high < low
// low is returned.
func IntClamp(val, low, high int) int {
	return IntMax(low, IntMin(val, high))
}

