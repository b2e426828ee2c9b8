// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package restapi exposes a stacking job's progress over HTTP, so an
// operator can poll a long-running run from a script. Grounded in the
// teacher's internal/rest/serve.go; gin route group layout carries over,
// the job-submission endpoint does not (this package is read-only status,
// not a remote job queue).
package restapi

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/nightframe/align/internal/bbox"
)

// Status is an immutable snapshot of a stacking run's progress, published
// by the orchestrator and read by HTTP handlers.
type Status struct {
	TotalFrames     int       `json:"totalFrames"`
	FramesProcessed int       `json:"framesProcessed"`
	FramesDropped   int       `json:"framesDropped"`
	BoundingBox     bbox.Box  `json:"boundingBox"`
	Done            bool      `json:"done"`
}

// Tracker holds the current Status behind a mutex; this is the one place
// in the repository where concurrent access to shared state occurs, since
// net/http serves each request on its own goroutine while the
// single-threaded orchestrator publishes updates from the main goroutine.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

// NewTracker returns a tracker reporting zero progress over totalFrames.
func NewTracker(totalFrames int) *Tracker {
	return &Tracker{status: Status{TotalFrames: totalFrames, BoundingBox: bbox.Empty()}}
}

// Publish atomically replaces the current status snapshot.
func (t *Tracker) Publish(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Serve starts a gin HTTP server on addr exposing GET /api/v1/status. It
// blocks until the server stops or errors.
func Serve(addr string, tracker *Tracker) error {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/status", func(c *gin.Context) {
				c.JSON(http.StatusOK, tracker.Snapshot())
			})
		}
	}
	return r.Run(addr)
}
