package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TaskProgress prints one line per task of a known list:
//
//	[2/3] add_column users.bio ............ done (12ms)
type TaskProgress struct {
	tasks   []string
	current int
	writer  io.Writer
	times   []time.Duration
	start   time.Time
	started int
	failed  bool
}

// NewTaskProgress creates a tracker writing to stderr.
func NewTaskProgress(tasks []string) *TaskProgress {
	return &TaskProgress{
		tasks:  tasks,
		writer: os.Stderr,
		times:  make([]time.Duration, len(tasks)),
	}
}

// SetWriter redirects progress output.
func (t *TaskProgress) SetWriter(w io.Writer) { t.writer = w }

// Start begins the task at index.
func (t *TaskProgress) Start(index int) {
	t.current = index
	t.started++
	t.start = time.Now()
	fmt.Fprintf(t.writer, "  [%d/%d] %s ", index+1, len(t.tasks), t.tasks[index])
}

// Complete marks the current task as done.
func (t *TaskProgress) Complete() {
	t.finish(Done("done"))
}

// Failed marks the current task as failed.
func (t *TaskProgress) Failed() {
	t.failed = true
	t.finish(Failed("failed"))
}

func (t *TaskProgress) finish(status string) {
	elapsed := time.Since(t.start)
	t.times[t.current] = elapsed
	fmt.Fprintf(t.writer, "%s %s (%s)\n", dots(t.tasks[t.current]), status, formatDuration(elapsed))
}

// Summary prints the total time of the tasks that ran.
func (t *TaskProgress) Summary() {
	var total time.Duration
	for _, d := range t.times {
		total += d
	}
	verb := "Completed"
	if t.failed {
		verb = "Stopped after"
	}
	fmt.Fprintf(t.writer, "\n%s %s in %s\n", verb, FormatCount(t.started, "task", "tasks"), formatDuration(total))
}

func dots(task string) string {
	n := 40 - len(task)
	if n < 3 {
		n = 3
	}
	return Dim(strings.Repeat(".", n))
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
