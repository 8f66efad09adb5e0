package app

import (
	"context"
	"io"
	"testing"
	"time"

	"attendance-reconciler/internal/config"
	"attendance-reconciler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.BotConfig{
		DatabaseDriver:    config.DriverSQLite,
		DatabaseURL:       "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		DefaultDailyHours: 8,
		Timezone:          "UTC",
	}
	now := func() time.Time { return time.Date(2024, time.February, 5, 9, 0, 0, 0, time.UTC) }

	a, err := New(cfg, now, log)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	u, err := a.Users.Register(ctx, 42, "amira", "Amira", "")
	require.NoError(t, err)

	_, err = a.Users.Register(ctx, 42, "amira", "Amira", "")
	assert.ErrorIs(t, err, service.ErrUserExists)

	record, err := a.Attendance.CheckIn(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-05", record.Date.String())
	assert.Equal(t, "2024-02-05", a.Reports.Today().String())
}

func TestNew_UnsupportedDriver(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	_, err := New(&config.BotConfig{DatabaseDriver: "oracle", DatabaseURL: "x"}, nil, log)
	assert.Error(t, err)
}
