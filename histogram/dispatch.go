package histogram

import "sync"

// featureTask does whatever work is needed to fill histogram row f.
type featureTask func(f int)

// dispatch runs task over every feature index in features using at most
// nThreads goroutines, each statically assigned a contiguous chunk of
// ceil(len(features)/nThreads) features (the last chunk may be shorter). Every task writes only to its own output row, so no
// synchronization is needed between workers; dispatch itself is a barrier,
// returning only once every chunk has completed.
func dispatch(features []uint32, nThreads int, task featureTask) {
	n := len(features)
	if n == 0 {
		return
	}
	if nThreads < 1 {
		nThreads = 1
	}
	if nThreads > n {
		nThreads = n
	}

	chunk := (n + nThreads - 1) / nThreads

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for _, f := range features[lo:hi] {
				task(int(f))
			}
		}(start, end)
	}
	wg.Wait()
}
