package export

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventKind distinguishes progress notifications from the terminal one.
type EventKind int

const (
	// EventProgress carries one line of backend output, relayed verbatim.
	EventProgress EventKind = iota
	// EventDone is the single terminal notification; Err is nil on success.
	EventDone
)

// Event is one backend notification.
type Event struct {
	Kind EventKind
	Line string
	Err  error
}

// Job is a running export. Events delivers zero or more progress events
// followed by exactly one terminal EventDone, then closes.
type Job struct {
	ID     string
	Events <-chan Event
}

// Runner spawns the ffmpeg backend for export requests.
type Runner struct {
	// FFmpegPath is the backend binary; "ffmpeg" resolves via PATH.
	FFmpegPath string
	Logger     zerolog.Logger
}

// Start launches the backend for req and returns a Job whose events stream
// asynchronously. An error is returned only when the process cannot be
// spawned at all; backend failures arrive as the terminal event. Cancelling
// ctx kills the backend, which also surfaces as the terminal event.
func (r *Runner) Start(ctx context.Context, req Request) (*Job, error) {
	bin := r.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	args := Args(req)

	cmd := exec.CommandContext(ctx, bin, args...)
	// Kill the whole process group on cancellation: killing only the direct
	// child would leave descendants holding the stderr pipe open, stalling
	// the scanner and the terminal event. WaitDelay force-closes the pipe if
	// anything survives the kill.
	setProcessGroup(cmd)
	cmd.WaitDelay = 3 * time.Second
	// ffmpeg reports progress on stderr.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("connecting to backend output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", bin, err)
	}

	id := uuid.New().String()
	r.Logger.Info().Str("job_id", id).Str("input", req.InputPath).
		Str("output", req.OutputPath).Strs("args", args).Msg("export started")

	events := make(chan Event)
	go func() {
		defer close(events)

		// Relay stderr lines, suppressing consecutive duplicates: ffmpeg
		// re-emits identical stats lines at a high rate.
		var last string
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == last {
				continue
			}
			last = line
			events <- Event{Kind: EventProgress, Line: line}
		}

		err := cmd.Wait()
		if err != nil {
			r.Logger.Error().Str("job_id", id).Err(err).Msg("export failed")
			events <- Event{Kind: EventDone, Err: fmt.Errorf("encoding backend: %w", err)}
			return
		}
		r.Logger.Info().Str("job_id", id).Msg("export finished")
		events <- Event{Kind: EventDone}
	}()

	return &Job{ID: id, Events: events}, nil
}
