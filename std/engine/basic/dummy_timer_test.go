package basic_test

import (
	"testing"
	"time"

	"github.com/named-data/ndn-cpp-sub004/std/engine/basic"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	tu.SetT(t)

	tm := basic.NewDummyTimer()
	require.Equal(t, tu.NoErr(time.Parse(time.RFC3339, "1970-01-01T00:00:00Z")), tm.Now())
	tm.MoveForward(10 * time.Second)
	require.Equal(t, tu.NoErr(time.Parse(time.RFC3339, "1970-01-01T00:00:10Z")), tm.Now())
	tm.MoveForward(50 * time.Second)
	require.Equal(t, tu.NoErr(time.Parse(time.RFC3339, "1970-01-01T00:01:00Z")), tm.Now())
}

func TestSchedule(t *testing.T) {
	tu.SetT(t)

	tm := basic.NewDummyTimer()
	val := 0
	tm.Schedule(10*time.Second, func() {
		val = 1
	})
	tm.MoveForward(9 * time.Second)
	require.Equal(t, 0, val)
	tm.MoveForward(1 * time.Second)
	require.Equal(t, 1, val)

	lst := []int{}
	tm.Schedule(20*time.Second, func() {
		lst = append(lst, 2)
	})
	tm.Schedule(10*time.Second, func() {
		lst = append(lst, 1)
	})
	tm.Schedule(15*time.Second, func() {
		lst = append(lst, 3)
	})
	tm.MoveForward(11 * time.Second)
	require.Equal(t, []int{1}, lst)
	tm.MoveForward(10 * time.Second)
	require.Equal(t, []int{1, 3, 2}, lst)
	require.Equal(t, 0, tm.Pending())
}

func TestScheduleFromCallback(t *testing.T) {
	tu.SetT(t)

	tm := basic.NewDummyTimer()
	start := tm.Now()
	fired := []time.Duration{}
	var tick func()
	tick = func() {
		fired = append(fired, tm.Now().Sub(start))
		if len(fired) < 3 {
			tm.Schedule(time.Second, tick)
		}
	}
	tm.Schedule(time.Second, tick)
	tm.MoveForward(10 * time.Second)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, fired)
	require.Equal(t, 10*time.Second, tm.Now().Sub(start))
}

func TestCancel(t *testing.T) {
	tu.SetT(t)

	tm := basic.NewDummyTimer()
	val := 0
	cancel := tm.Schedule(10*time.Second, func() {
		val = 1
	})
	require.NoError(t, cancel())
	require.Error(t, cancel())
	tm.MoveForward(11 * time.Second)
	require.Equal(t, 0, val)

	lst := []int{0, 0, 0}
	tm.Schedule(10*time.Second, func() {
		lst[0] = 1
	})
	tm.Schedule(20*time.Second, func() {
		lst[1] = 2
	})
	cancel = tm.Schedule(15*time.Second, func() {
		lst[2] = 3
	})
	require.NoError(t, cancel())
	tm.MoveForward(21 * time.Second)
	require.Equal(t, []int{1, 2, 0}, lst)

	// cancelling after the call
	fired := tm.Schedule(time.Second, func() {})
	tm.MoveForward(time.Second)
	require.Error(t, fired())
}

func TestRealTimer(t *testing.T) {
	tu.SetT(t)

	tm := basic.NewTimer()
	done := make(chan struct{})
	tm.Schedule(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	cancel := tm.Schedule(time.Hour, func() {})
	require.NoError(t, cancel())
	require.Error(t, cancel())
	require.Len(t, tm.Nonce(), 8)
}
