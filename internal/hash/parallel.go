package hash

import (
	"runtime"
	"sync"

	"github.com/arlojordan/selectest/internal/fqs"
)

// BulkHashByFileParallel is the concurrent twin of BulkHashByFile: each
// file's fragments are hashed by a worker-pool goroutine. Merging happens
// after every worker has finished, so completion order never affects the
// result.
func BulkHashByFileParallel(byFile map[string][]Fragment) map[fqs.FQS]string {
	type job struct {
		path      string
		fragments []Fragment
	}

	jobs := make([]job, 0, len(byFile))
	for path, fragments := range byFile {
		jobs = append(jobs, job{path: path, fragments: fragments})
	}
	if len(jobs) == 0 {
		return map[fqs.FQS]string{}
	}

	numWorkers := min(runtime.NumCPU(), len(jobs))
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobCh := make(chan job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	type partial map[fqs.FQS]string
	resultCh := make(chan partial, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				resultCh <- BulkHashFile(j.path, j.fragments)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make(map[fqs.FQS]string)
	for p := range resultCh {
		for sym, h := range p {
			out[sym] = h
		}
	}
	return out
}
