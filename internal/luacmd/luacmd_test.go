package luacmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soar/mapnav/internal/navigation"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return &Client{
		Dir:          t.TempDir(),
		PollInterval: 5 * time.Millisecond,
		Timeout:      300 * time.Millisecond,
	}
}

// fakeMod answers the next command written to dir using reply, which gets
// the command and its timestamp. It returns the command it saw.
func fakeMod(t *testing.T, dir string, reply func(cmd, stamp string) string) <-chan string {
	t.Helper()
	seen := make(chan string, 1)
	go func() {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			data, err := os.ReadFile(filepath.Join(dir, cmdFile))
			if err == nil {
				line := string(data)
				if i := strings.LastIndex(line, " "); i > 0 {
					cmd, stamp := line[:i], line[i+1:]
					os.WriteFile(filepath.Join(dir, respFile), []byte(reply(cmd, stamp)), 0o644)
					seen <- cmd
					return
				}
			}
			time.Sleep(2 * time.Millisecond)
		}
		close(seen)
	}()
	return seen
}

func requireCleanedUp(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{cmdFile, respFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.True(t, os.IsNotExist(err), name)
	}
}

func TestScanStripsTimestamp(t *testing.T) {
	c := testClient(t)
	seen := fakeMod(t, c.Dir, func(cmd, stamp string) string {
		return "Gate;Bridge TIMESTAMP:" + stamp + "\n"
	})

	resp, err := c.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Gate;Bridge", resp)
	require.Equal(t, "SCAN", <-seen)
	requireCleanedUp(t, c.Dir)
}

func TestTeleportSendsName(t *testing.T) {
	c := testClient(t)
	seen := fakeMod(t, c.Dir, func(cmd, stamp string) string { return "  OK  " })

	resp, err := c.Teleport(context.Background(), " Old Bridge ")
	require.NoError(t, err)
	require.Equal(t, "OK", resp)
	require.Equal(t, "TPNAME Old Bridge", <-seen)
}

func TestTeleportRequiresName(t *testing.T) {
	_, err := testClient(t).Teleport(context.Background(), "   ")
	require.ErrorIs(t, err, ErrNoName)
}

func TestSendTimesOut(t *testing.T) {
	c := testClient(t)
	_, err := c.Send(context.Background(), "SCAN")
	require.ErrorIs(t, err, ErrTimeout)
	requireCleanedUp(t, c.Dir)
}

func TestSendIgnoresStaleResponse(t *testing.T) {
	c := testClient(t)
	c.now = func() time.Time { return time.UnixMilli(2000) }
	seen := fakeMod(t, c.Dir, func(cmd, stamp string) string {
		return "old TIMESTAMP:1000"
	})

	_, err := c.Send(context.Background(), "SCAN")
	require.ErrorIs(t, err, ErrStaleResponse)
	require.Equal(t, "SCAN", <-seen)
	requireCleanedUp(t, c.Dir)
}

func TestSendRemovesLeftoverResponse(t *testing.T) {
	c := testClient(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir, respFile), []byte("leftover"), 0o644))

	_, err := c.Send(context.Background(), "SCAN")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSendStopsOnCancel(t *testing.T) {
	c := testClient(t)
	c.Timeout = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, "SCAN")
	require.ErrorIs(t, err, context.Canceled)
	requireCleanedUp(t, c.Dir)
}

type fakeCommander struct {
	mu        sync.Mutex
	calls     []string
	release   chan struct{}
	teleportE error
}

func (f *fakeCommander) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeCommander) Scan(ctx context.Context) (string, error) {
	f.record("scan")
	return "Gate", nil
}

func (f *fakeCommander) Teleport(ctx context.Context, name string) (string, error) {
	f.record("teleport " + name)
	return "", f.teleportE
}

type statusLog struct {
	mu   sync.Mutex
	msgs []string
}

func (s *statusLog) add(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *statusLog) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

type passthrough struct{ events []navigation.Event }

func (p *passthrough) HandleEvent(ev navigation.Event) { p.events = append(p.events, ev) }

func press(b navigation.Button) navigation.Event {
	return navigation.ButtonEvent{Button: b, State: navigation.Pressed}
}

func TestActionsRunCommandsAndForwardEvents(t *testing.T) {
	cmds := &fakeCommander{}
	next := &passthrough{}
	status := &statusLog{}
	a := &Actions{
		Commands: cmds,
		Next:     next,
		Target:   func() (string, bool) { return "Gate", true },
		Status:   status.add,
	}

	a.HandleEvent(press(ScanButton))
	a.Wait()
	a.HandleEvent(press(TeleportButton))
	a.Wait()
	a.HandleEvent(navigation.ButtonEvent{Button: ScanButton, State: navigation.Released})
	a.HandleEvent(press(navigation.ButtonA))
	a.Wait()

	require.Equal(t, []string{"scan", "teleport Gate"}, cmds.calls)
	require.Equal(t, []string{"Save points: Gate", "Teleported to Gate"}, status.all())
	require.Len(t, next.events, 4)
}

func TestActionsTeleportWithoutTarget(t *testing.T) {
	cmds := &fakeCommander{}
	status := &statusLog{}
	a := &Actions{
		Commands: cmds,
		Target:   func() (string, bool) { return "", false },
		Status:   status.add,
	}

	a.HandleEvent(press(TeleportButton))
	a.Wait()
	require.Empty(t, cmds.calls)
	require.Equal(t, []string{"No save point selected"}, status.all())
}

func TestActionsRunOneCommandAtATime(t *testing.T) {
	cmds := &fakeCommander{release: make(chan struct{})}
	status := &statusLog{}
	a := &Actions{Commands: cmds, Status: status.add}

	a.HandleEvent(press(ScanButton))
	a.HandleEvent(press(ScanButton))
	require.Equal(t, []string{"Save point command already running"}, status.all())

	close(cmds.release)
	a.Wait()
	require.Equal(t, []string{"scan"}, cmds.calls)
}

func TestActionsReportTeleportFailure(t *testing.T) {
	cmds := &fakeCommander{teleportE: ErrTimeout}
	status := &statusLog{}
	a := &Actions{
		Commands: cmds,
		Target:   func() (string, bool) { return "Gate", true },
		Status:   status.add,
	}

	a.HandleEvent(press(TeleportButton))
	a.Wait()
	require.Equal(t, []string{"Teleport to Gate failed"}, status.all())
}

func TestActionsWithoutCommandsOnlyForward(t *testing.T) {
	next := &passthrough{}
	status := &statusLog{}
	a := &Actions{Next: next, Status: status.add}

	a.HandleEvent(press(ScanButton))
	a.HandleEvent(press(TeleportButton))
	a.Wait()
	require.Empty(t, status.all())
	require.Len(t, next.events, 2)
}
