/*package thread contains functions useful for multi-threading.*/
package thread

import (
	"runtime"
	"sync"
)

// Workers returns the number of workers to use when n are requested. n <= 0
// means one worker per CPU, and n is clipped to the number of CPUs.
func Workers(n int) int {
	if n <= 0 || n > runtime.NumCPU() {
		return runtime.NumCPU()
	}
	return n
}

// WorkerQueue runs f on every job in [0, jobs) using the given number of
// workers. Jobs are handed out in order to whichever worker is free, so f
// must not depend on which worker runs which job except through the worker
// index it is passed (e.g. to select a per-worker buffer). WorkerQueue
// returns once every job has finished.
func WorkerQueue(workers, jobs int, f func(worker, job int)) {
	if workers <= 0 {
		workers = 1
	}
	if workers > jobs {
		workers = jobs
	}

	queue := make(chan int, jobs)
	for j := 0; j < jobs; j++ {
		queue <- j
	}
	close(queue)

	wg := &sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for j := range queue {
				f(w, j)
			}
		}(w)
	}
	wg.Wait()
}

// SplitArray splits the range [0, n) between workers in strided chunks and
// calls f(worker, start, end, step) once per worker.
func SplitArray(n, workers int, f func(worker, start, end, step int)) {
	if workers <= 0 {
		workers = 1
	}
	wg := &sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			f(w, w, n, workers)
		}(w)
	}
	wg.Wait()
}
