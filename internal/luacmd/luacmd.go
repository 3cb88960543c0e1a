// Package luacmd talks to the in-game save point mod. Commands and replies
// are exchanged as two files in a directory both sides watch: the host
// writes "<CMD> <millis>" to cmd.txt and the mod answers in resp.txt,
// optionally tagged with "TIMESTAMP:<millis>".
package luacmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DirName is the directory under the system temp dir the mod polls.
const DirName = "Forged-In-Shadow-Torch-Save-Point-Teleport-Mod"

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 5 * time.Second

	cmdFile      = "cmd.txt"
	respFile     = "resp.txt"
	timestampTag = "TIMESTAMP:"
)

var (
	ErrTimeout       = errors.New("timed out waiting for the mod to respond")
	ErrStaleResponse = errors.New("mod only answered an earlier command")
	ErrNoName        = errors.New("save point name is empty")
)

// DefaultDir returns the command directory the mod expects.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DirName)
}

// Client sends one command at a time. The zero value uses DefaultDir and
// the default timings.
type Client struct {
	Dir          string
	PollInterval time.Duration
	Timeout      time.Duration

	now func() time.Time
}

// Scan asks the mod to list the save points of the current level.
func (c *Client) Scan(ctx context.Context) (string, error) {
	log.Println("Sending SCAN command")
	return c.Send(ctx, "SCAN")
}

// Teleport moves the player to the named save point.
func (c *Client) Teleport(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNoName
	}
	log.Printf("Sending TPNAME command: %s", name)
	return c.Send(ctx, "TPNAME "+name)
}

// Send writes cmd and waits for the matching reply. A reply carrying the
// timestamp of another command is ignored; a reply without any timestamp
// is accepted. Both files are removed before returning.
func (c *Client) Send(ctx context.Context, cmd string) (string, error) {
	dir := c.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create command directory: %w", err)
	}
	cmdPath := filepath.Join(dir, cmdFile)
	respPath := filepath.Join(dir, respFile)
	cleanup := func() {
		os.Remove(cmdPath)
		os.Remove(respPath)
	}
	cleanup()

	stamp := strconv.FormatInt(c.clock().UnixMilli(), 10)
	if err := os.WriteFile(cmdPath, []byte(cmd+" "+stamp), 0o644); err != nil {
		return "", fmt.Errorf("failed to write command file: %w", err)
	}
	defer cleanup()

	timeout := time.NewTimer(c.timeout())
	defer timeout.Stop()
	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()

	stale := false
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeout.C:
			if stale {
				return "", fmt.Errorf("%s: %w", cmd, ErrStaleResponse)
			}
			return "", fmt.Errorf("%s: %w", cmd, ErrTimeout)
		case <-ticker.C:
		}

		data, err := os.ReadFile(respPath)
		if err != nil {
			continue
		}
		resp := string(data)
		if !strings.Contains(resp, stamp) && strings.Contains(resp, timestampTag) {
			if !stale {
				log.Printf("Ignoring response with mismatched timestamp: %q", resp)
			}
			stale = true
			continue
		}
		if i := strings.Index(resp, timestampTag); i >= 0 {
			resp = resp[:i]
		}
		return strings.TrimSpace(resp), nil
	}
}

func (c *Client) dir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return DefaultDir()
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
