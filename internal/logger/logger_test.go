package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("WARN").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("").GetLevel())

	f, ok := New("info").Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
	assert.True(t, f.FullTimestamp)
}
