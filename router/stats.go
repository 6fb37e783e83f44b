// Copyright 2018 The kingbus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"github.com/rcrowley/go-metrics"
)

//Stats holds the per-instance counters of spec.md §3 (C9), backed by
//rcrowley/go-metrics counters so they can be sampled the same way the
//rest of the process's metrics are.
type Stats struct {
	NBinlogs     metrics.Counter
	NFakeEvents  metrics.Counter
	NRotates     metrics.Counter
	NBinlogErrors metrics.Counter

	//events is the per-event-type histogram, indexed by replication
	//event type. Types outside [0, eventTypeTableSize) are simply not
	//accounted, per spec.md §7.
	events [eventTypeTableSize]metrics.Counter
}

//NewStats allocates a Stats block for instance name and registers its
//counters into the process-wide go-metrics registry, so a
//PrometheusServer can bridge them alongside every other instance's.
func NewStats(name string) *Stats {
	s := &Stats{
		NBinlogs:      metrics.NewRegisteredCounter(name+".n_binlogs", metrics.DefaultRegistry),
		NFakeEvents:   metrics.NewRegisteredCounter(name+".n_fake_events", metrics.DefaultRegistry),
		NRotates:      metrics.NewRegisteredCounter(name+".n_rotates", metrics.DefaultRegistry),
		NBinlogErrors: metrics.NewRegisteredCounter(name+".n_binlog_errors", metrics.DefaultRegistry),
	}
	for i := range s.events {
		s.events[i] = metrics.NewCounter()
	}
	return s
}

//recordEventType increments the histogram slot for eventType, if it is
//within the table's bound.
func (s *Stats) recordEventType(eventType byte) {
	if int(eventType) < len(s.events) {
		s.events[eventType].Inc(1)
	}
}

//EventTypeCount returns the count of eventType, or 0 if out of range.
func (s *Stats) EventTypeCount(eventType byte) int64 {
	if int(eventType) >= len(s.events) {
		return 0
	}
	return s.events[eventType].Count()
}
