// Package profile implements the interactive profile viewer spec section
// C.1 (supplemented feature) describes: a per-relation size/timing report
// gathered during evaluation, grounded on go-corset's
// pkg/util/perfstats.go timing convention and
// original_source/samples/path/driver_ncurses.cpp's souffleprof, which
// pages through the same kind of per-relation counters in a curses table.
//
// Rather than threading a bespoke hook type through pkg/datalog/eval, a
// Recorder is a logrus.Hook: it is attached to the *logrus.Logger an
// Evaluator is configured with (eval.Config.Logger) and observes the
// "relation"/"size" and "elapsed" fields the evaluator's LogSize/LogTimer
// statements already emit (spec section 4.4).
package profile

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RelationStat is one LogSize observation: a relation's cardinality at
// the point the program logged it.
type RelationStat struct {
	Relation  string
	Size      int
	Message   string
	Timestamp time.Time
}

// TimerStat is one LogTimer observation: how long a timed Stmt body took.
type TimerStat struct {
	Message   string
	Elapsed   time.Duration
	Timestamp time.Time
}

// Recorder accumulates RelationStat and TimerStat observations from an
// Evaluator's logrus output. The zero value is not usable; construct one
// with NewRecorder.
type Recorder struct {
	mu        sync.Mutex
	relations []RelationStat
	timers    []TimerStat
	start     time.Time
}

// NewRecorder constructs a Recorder. Attach it to a logger with Attach
// before handing that logger to eval.Config.Logger.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Attach registers this Recorder as a hook on logger, so it observes
// every entry the evaluator logs through it.
func (r *Recorder) Attach(logger *logrus.Logger) {
	logger.AddHook(r)
}

// Levels implements logrus.Hook: a Recorder wants every level the
// evaluator logs relation-size and timer entries at.
func (r *Recorder) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (r *Recorder) Fire(entry *logrus.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if size, ok := entry.Data["size"]; ok {
		relation, _ := entry.Data["relation"].(string)

		sizeInt, ok := size.(int)
		if !ok {
			return nil
		}

		r.relations = append(r.relations, RelationStat{
			Relation:  relation,
			Size:      sizeInt,
			Message:   entry.Message,
			Timestamp: entry.Time,
		})

		return nil
	}

	if elapsed, ok := entry.Data["elapsed"]; ok {
		elapsedDur, ok := elapsed.(time.Duration)
		if !ok {
			return nil
		}

		r.timers = append(r.timers, TimerStat{
			Message:   entry.Message,
			Elapsed:   elapsedDur,
			Timestamp: entry.Time,
		})
	}

	return nil
}

// RelationStats returns every LogSize observation recorded so far, most
// recent per relation last.
func (r *Recorder) RelationStats() []RelationStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RelationStat, len(r.relations))
	copy(out, r.relations)

	return out
}

// TimerStats returns every LogTimer observation recorded so far.
func (r *Recorder) TimerStats() []TimerStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TimerStat, len(r.timers))
	copy(out, r.timers)

	return out
}

// LargestRelations returns the most recent size observation for each
// distinct relation, sorted by descending size (souffleprof's default
// "relation size" view).
func (r *Recorder) LargestRelations() []RelationStat {
	latest := make(map[string]RelationStat)

	for _, stat := range r.RelationStats() {
		latest[stat.Relation] = stat
	}

	out := make([]RelationStat, 0, len(latest))
	for _, stat := range latest {
		out = append(out, stat)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Size > out[j].Size })

	return out
}

// Elapsed is the time since this Recorder was constructed.
func (r *Recorder) Elapsed() time.Duration {
	return time.Since(r.start)
}
