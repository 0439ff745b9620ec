package histogram

// subtractRow computes out[b] = parentRow[b] - siblingRow[b] for every bin,
// field by field. This is the only place a histogram's gradient or Hessian
// sum can go negative, from floating-point cancellation; callers must
// tolerate tiny negative sums.
func subtractRow(parentRow, siblingRow, out []BinRecord) {
	for b := range out {
		out[b] = parentRow[b]
		out[b].Sub(siblingRow[b])
	}
}
