// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "sync"

// cachedRun is the last full response for one workflow run.
type cachedRun struct {
	etag string
	run  WorkflowRun
}

// runCache holds the last observed state of every run the client has
// polled, keyed by run ID. GetWorkflowRun sends the stored ETag as
// If-None-Match; GitHub answers an unchanged run with 304, which does
// not count against the rate limit, and the cached run is returned.
//
// Only single-run reads are cached. Listings are read once per wait and
// change on every dispatch.
type runCache struct {
	mu   sync.Mutex
	runs map[int64]cachedRun
}

func newRunCache() *runCache {
	return &runCache{runs: make(map[int64]cachedRun)}
}

func (cache *runCache) lookup(runID int64) (cachedRun, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.runs[runID]
	return entry, ok
}

func (cache *runCache) store(runID int64, etag string, run WorkflowRun) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.runs[runID] = cachedRun{etag: etag, run: run}
}
