package solver

const (
	unfixed int8 = 0
	fixedT  int8 = 1
	fixedF  int8 = -1
)

// propagate runs bounds propagation over the hard constraints until nothing
// changes. It returns the fixed values and the index of a constraint that
// cannot be satisfied, or -1.
func propagate(numVars int, linears []Linear) ([]int8, int) {
	fixed := make([]int8, numVars)
	watch := make([][]int, numVars)
	for i, l := range linears {
		for _, t := range l.Terms {
			watch[t.Var] = append(watch[t.Var], i)
		}
	}

	queued := make([]bool, len(linears))
	queue := make([]int, 0, len(linears))
	for i := range linears {
		queue = append(queue, i)
		queued[i] = true
	}

	for len(queue) > 0 {
		ci := queue[0]
		queue = queue[1:]
		queued[ci] = false
		l := linears[ci]

		lo, hi := 0, 0
		for _, t := range l.Terms {
			switch fixed[t.Var] {
			case fixedT:
				lo += t.Coef
				hi += t.Coef
			case unfixed:
				if t.Coef > 0 {
					hi += t.Coef
				} else {
					lo += t.Coef
				}
			}
		}
		if lo > l.Hi || hi < l.Lo {
			return fixed, ci
		}

		for _, t := range l.Terms {
			if fixed[t.Var] != unfixed || t.Coef == 0 {
				continue
			}
			var val int8
			if t.Coef > 0 {
				switch {
				case lo+t.Coef > l.Hi:
					val = fixedF
					hi -= t.Coef
				case hi-t.Coef < l.Lo:
					val = fixedT
					lo += t.Coef
				}
			} else {
				switch {
				case hi+t.Coef < l.Lo:
					val = fixedF
					lo -= t.Coef
				case lo-t.Coef > l.Hi:
					val = fixedT
					hi += t.Coef
				}
			}
			if val == unfixed {
				continue
			}
			fixed[t.Var] = val
			for _, other := range watch[t.Var] {
				if !queued[other] {
					queued[other] = true
					queue = append(queue, other)
				}
			}
		}
	}
	return fixed, -1
}
