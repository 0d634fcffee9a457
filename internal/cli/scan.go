package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"signalkit/internal/core/evidence"
	"signalkit/internal/core/signal"
	perr "signalkit/internal/platform/errors"

	"github.com/spf13/cobra"
)

type scanFlags struct {
	user       string
	todayLog   string
	memory     string
	transcript string
	events     string
	only       []string
	asJSON     bool
	detailed   bool
	workers    int
}

// scanResult is the JSON form of one scanned bundle
type scanResult struct {
	File    string          `json:"file,omitempty"`
	Signals []string        `json:"signals"`
	Details []signal.Signal `json:"details,omitempty"`
}

func newScanCmd(a *app) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan [bundle files...]",
		Short: "Extract signals from evidence bundles or from flags",
		Long: `With files, each file is one bundle (JSON, or YAML by extension) and the
files are scanned concurrently; "-" reads a JSON bundle from stdin. Without
files the bundle is assembled from the field flags.`,
		Example: `  signalkit scan bundle.json
  signalkit scan --user "Please add a dark mode" --today-log ./today.log
  cat bundle.json | signalkit scan - --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.user, "user", "", "the user's message text")
	fl.StringVar(&f.todayLog, "today-log", "", "path to today's log")
	fl.StringVar(&f.memory, "memory", "", "path to the memory snippet")
	fl.StringVar(&f.transcript, "transcript", "", "path to the recent session transcript")
	fl.StringVar(&f.events, "events", "", "path to a JSON or YAML array of recent events")
	fl.StringSliceVar(&f.only, "only", nil, "keep only these signal names (comma separated)")
	fl.BoolVar(&f.asJSON, "json", false, "print JSON instead of one signal per line")
	fl.BoolVar(&f.detailed, "detailed", false, "include source field, language and rule id")
	fl.IntVar(&f.workers, "workers", a.cfg.BatchWorkers, "concurrent bundles when scanning files (0 = GOMAXPROCS)")
	return cmd
}

func runScan(cmd *cobra.Command, a *app, f scanFlags, files []string) error {
	keep, err := onlyFilter(f.only)
	if err != nil {
		return err
	}

	var results []scanResult
	if len(files) == 0 {
		b, err := bundleFromFlags(f)
		if err != nil {
			return err
		}
		if b.IsEmpty() {
			return perr.InvalidArgf("nothing to scan: pass bundle files or at least one field flag")
		}
		results = []scanResult{{Details: keep(a.engine().ExtractSignals(b))}}
	} else {
		items := make([]any, len(files))
		for i, path := range files {
			b, err := loadBundle(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			items[i] = b
		}
		batch, err := a.engine().ExtractBatchSignals(cmd.Context(), items, f.workers)
		if err != nil {
			return err
		}
		for i, sigs := range batch {
			results = append(results, scanResult{File: files[i], Details: keep(sigs)})
		}
	}

	for i := range results {
		results[i].Signals = signal.Strings(results[i].Details)
		if !f.detailed {
			results[i].Details = nil
		}
	}
	return printScan(cmd.OutOrStdout(), results, len(files) > 1, f)
}

func printScan(w io.Writer, results []scanResult, multi bool, f scanFlags) error {
	if f.asJSON {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if multi {
			return enc.Encode(results)
		}
		r := results[0]
		r.File = ""
		return enc.Encode(r)
	}

	for _, r := range results {
		for i, s := range r.Signals {
			line := s
			if f.detailed {
				d := r.Details[i]
				line = fmt.Sprintf("%s\t[%s %s %s]", s, d.Source, d.Lang, d.RuleID)
			}
			if multi {
				line = r.File + "\t" + line
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func bundleFromFlags(f scanFlags) (evidence.Bundle, error) {
	b := evidence.Bundle{UserSnippet: f.user, RecentEvents: []any{}}
	for _, src := range []struct {
		path string
		dst  *string
	}{
		{f.todayLog, &b.TodayLog},
		{f.memory, &b.MemorySnippet},
		{f.transcript, &b.RecentSessionTranscript},
	} {
		if src.path == "" {
			continue
		}
		data, err := os.ReadFile(src.path)
		if err != nil {
			return b, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", src.path)
		}
		*src.dst = string(data)
	}
	if f.events != "" {
		evs, err := evidence.LoadEvents(f.events)
		if err != nil {
			return b, err
		}
		b.RecentEvents = evs
	}
	return b, nil
}

func loadBundle(stdin io.Reader, path string) (evidence.Bundle, error) {
	if path != "-" {
		return evidence.LoadFile(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return evidence.Bundle{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read stdin")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return evidence.Bundle{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode stdin bundle")
	}
	return evidence.Normalize(m), nil
}

func onlyFilter(only []string) (func([]signal.Signal) []signal.Signal, error) {
	if len(only) == 0 {
		return func(xs []signal.Signal) []signal.Signal { return xs }, nil
	}
	want := map[signal.Name]bool{}
	for _, o := range only {
		n := signal.Name(strings.TrimSpace(o))
		if !signal.IsKnown(n) {
			return nil, perr.WithField(perr.InvalidArgf("unknown signal %q", o), "only")
		}
		want[n] = true
	}
	return func(xs []signal.Signal) []signal.Signal {
		out := xs[:0:0]
		for _, s := range xs {
			if want[s.Name] {
				out = append(out, s)
			}
		}
		return out
	}, nil
}
