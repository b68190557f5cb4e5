package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/laxmi-pos/laxmi-pos/jobs"
)

// Operator is the queue surface used by Run.
type Operator interface {
	Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error)
	InspectQueue(ctx context.Context) (QueueStats, error)
	ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error)
}

// Run executes one laxmictl command and returns the process exit code.
func Run(ctx context.Context, op Operator, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "trigger":
		if len(args) != 2 {
			fmt.Fprintf(stderr, "trigger: expected one job name (%s)\n", strings.Join(jobs.TaskTypes(), ", "))
			return 2
		}
		info, err := op.Trigger(ctx, args[1])
		if err != nil {
			fmt.Fprintf(stderr, "trigger: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
		return 0
	case "stats":
		stats, err := op.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "stats: %v\n", err)
			return 1
		}
		return writeJSON(stdout, stderr, stats)
	case "scheduled":
		fs := flag.NewFlagSet("scheduled", flag.ContinueOnError)
		fs.SetOutput(stderr)
		size := fs.Int("size", 10, "number of tasks to list")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		infos, err := op.ListScheduled(ctx, *size)
		if err != nil {
			fmt.Fprintf(stderr, "scheduled: %v\n", err)
			return 1
		}
		for _, info := range infos {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", info.ID, info.Type, info.NextProcessAt.Format("2006-01-02 15:04:05"))
		}
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: laxmictl trigger <job> | stats | scheduled [-size n]")
	fmt.Fprintf(w, "jobs: %s\n", strings.Join(jobs.TaskTypes(), ", "))
}
