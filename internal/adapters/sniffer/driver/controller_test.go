package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController(t *testing.T, runner *fakeRunner, opts Options) *Controller {
	t.Helper()
	in := newTestInspector(t, runner, "wlan0/wireless")
	return NewController("wlan0", in, opts, zap.NewNop())
}

func modeSteps(mode string) []string {
	return []string{
		"ip link set wlan0 down",
		"iw dev wlan0 set type " + mode,
		"ip link set wlan0 up",
	}
}

func TestEnterMonitorMode(t *testing.T) {
	runner := newFakeRunner()
	runner.push("iw dev wlan0 info", devInfoManaged)
	runner.push("iw dev wlan0 info", devInfoMonitor)
	runner.set("iw phy phy0 info", phyInfo, nil)
	for _, step := range modeSteps("monitor") {
		runner.set(step, "", nil)
	}
	c := newTestController(t, runner, Options{})

	require.NoError(t, c.EnterMonitorMode(context.Background()))
	assert.Equal(t, domain.ModeManaged, c.previousMode)
	assert.Subset(t, runner.history(), modeSteps("monitor"))
}

func TestEnterMonitorMode_AlreadyMonitor(t *testing.T) {
	runner := newFakeRunner()
	runner.set("iw dev wlan0 info", devInfoMonitor, nil)
	c := newTestController(t, runner, Options{})

	require.NoError(t, c.EnterMonitorMode(context.Background()))
	assert.NotContains(t, runner.history(), "iw dev wlan0 set type monitor")
}

func TestEnterMonitorMode_MissingInterface(t *testing.T) {
	in := newTestInspector(t, newFakeRunner())
	c := NewController("wlan0", in, Options{}, zap.NewNop())

	err := c.EnterMonitorMode(context.Background())
	assert.ErrorIs(t, err, ErrInterfaceNotFound)
}

func TestEnterMonitorMode_StepFailureNoRollback(t *testing.T) {
	runner := newFakeRunner()
	runner.set("iw dev wlan0 info", devInfoManaged, nil)
	runner.set("ip link set wlan0 down", "", nil)
	runner.set("iw dev wlan0 set type monitor", "command failed: Device or resource busy (-16)", errors.New("exit status 240"))
	c := newTestController(t, runner, Options{})

	err := c.EnterMonitorMode(context.Background())
	require.Error(t, err)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "iw dev wlan0 set type monitor", cmdErr.Command)
	assert.Contains(t, cmdErr.Output, "resource busy")
	assert.False(t, cmdErr.TimedOut)
	assert.NotContains(t, runner.history(), "ip link set wlan0 up")
	assert.Empty(t, c.previousMode)
}

func TestEnterMonitorMode_NotConfirmed(t *testing.T) {
	runner := newFakeRunner()
	runner.set("iw dev wlan0 info", devInfoManaged, nil)
	for _, step := range modeSteps("monitor") {
		runner.set(step, "", nil)
	}
	c := newTestController(t, runner, Options{})

	assert.ErrorIs(t, c.EnterMonitorMode(context.Background()), ErrModeNotConfirmed)
}

func TestExitMonitorMode_RestoresPrevious(t *testing.T) {
	runner := newFakeRunner()
	runner.push("iw dev wlan0 info", devInfoManaged)
	runner.push("iw dev wlan0 info", devInfoMonitor)
	runner.push("iw dev wlan0 info", devInfoMonitor)
	for _, step := range append(modeSteps("monitor"), modeSteps("managed")...) {
		runner.set(step, "", nil)
	}
	c := newTestController(t, runner, Options{})

	require.NoError(t, c.EnterMonitorMode(context.Background()))
	require.NoError(t, c.ExitMonitorMode(context.Background()))
	assert.Contains(t, runner.history(), "iw dev wlan0 set type managed")
	assert.Empty(t, c.previousMode)
}

func TestExitMonitorMode_NotInMonitor(t *testing.T) {
	runner := newFakeRunner()
	runner.set("iw dev wlan0 info", devInfoManaged, nil)
	c := newTestController(t, runner, Options{})

	require.NoError(t, c.ExitMonitorMode(context.Background()))
	assert.NotContains(t, runner.history(), "iw dev wlan0 set type managed")
}

func TestSetChannel(t *testing.T) {
	runner := newFakeRunner()
	runner.set("iw dev wlan0 set channel 6", "", nil)
	runner.set("iw dev wlan0 set channel 165", "command failed: Invalid argument (-22)", errors.New("exit status 234"))
	c := newTestController(t, runner, Options{})

	require.NoError(t, c.SetChannel(context.Background(), 6))
	assert.Equal(t, 6, c.CurrentChannel())

	err := c.SetChannel(context.Background(), 165)
	require.Error(t, err)
	assert.Equal(t, 6, c.CurrentChannel(), "failed switch keeps the previous channel")

	assert.ErrorIs(t, c.SetChannel(context.Background(), 0), ErrInvalidChannel)
}

func TestSetChannel_Timeout(t *testing.T) {
	runner := newFakeRunner()
	runner.hang("iw dev wlan0 set channel 11")
	c := newTestController(t, runner, Options{ChannelTimeout: 20 * time.Millisecond})

	err := c.SetChannel(context.Background(), 11)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandTimeout)
	assert.Equal(t, 0, c.CurrentChannel())
}

func TestNopController(t *testing.T) {
	n := NewNopController("capture.pcap")
	ctx := context.Background()

	assert.NoError(t, n.EnterMonitorMode(ctx))
	assert.NoError(t, n.SetChannel(ctx, 11))
	assert.Equal(t, 11, n.CurrentChannel())
	assert.True(t, n.Describe(ctx).InMonitorMode())
	assert.NoError(t, n.ExitMonitorMode(ctx))
}
