package profile_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souffle-lang/souffle-sub001/pkg/datalog/profile"
)

func TestRecorderCapturesRelationSizeAndTimerFields(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(bytesDiscard{})

	rec := profile.NewRecorder()
	rec.Attach(logger)

	logger.WithFields(logrus.Fields{"relation": "path", "size": 3}).Info("relation size")
	logger.WithFields(logrus.Fields{"relation": "path", "size": 6}).Info("relation size")
	logger.WithField("elapsed", 12*time.Millisecond).Info("fixpoint")

	stats := rec.RelationStats()
	require.Len(t, stats, 2)
	assert.Equal(t, 6, stats[1].Size)

	largest := rec.LargestRelations()
	require.Len(t, largest, 1)
	assert.Equal(t, 6, largest[0].Size)

	timers := rec.TimerStats()
	require.Len(t, timers, 1)
	assert.Equal(t, 12*time.Millisecond, timers[0].Elapsed)
}

func TestWriteReportRendersRelationsAndTimers(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(bytesDiscard{})

	rec := profile.NewRecorder()
	rec.Attach(logger)

	logger.WithFields(logrus.Fields{"relation": "edge", "size": 3}).Info("relation size")
	logger.WithFields(logrus.Fields{"relation": "path", "size": 6}).Info("relation size")
	logger.WithField("elapsed", 5*time.Millisecond).Info("fixpoint")

	var buf bytes.Buffer

	require.NoError(t, rec.WriteReport(&buf))

	out := buf.String()
	assert.Contains(t, out, "path")
	assert.Contains(t, out, "edge")
	assert.Contains(t, out, "fixpoint")
}

type bytesDiscard struct{}

func (bytesDiscard) Write(p []byte) (int, error) { return len(p), nil }
