package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type vocabEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rules       map[string]int `json:"rules"`
	Total       int            `json:"total"`
}

func newVocabCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "List the signal vocabulary with rule counts per language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.engine().Pack()
			counts := p.RuleCounts()

			langs := make([]string, 0, len(p.Languages))
			for _, l := range p.Languages {
				langs = append(langs, l.Tag)
			}
			entries := make([]vocabEntry, 0, len(p.Signals))
			for _, s := range p.Signals {
				e := vocabEntry{Name: string(s.Name), Description: s.Description, Rules: counts[s.Name]}
				for _, n := range e.Rules {
					e.Total += n
				}
				entries = append(entries, e)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"pack_version": p.Version,
					"languages":    langs,
					"signals":      entries,
				})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "SIGNAL\t%s\tTOTAL\tDESCRIPTION\n", strings.ToUpper(strings.Join(langs, "\t")))
			for _, e := range entries {
				cols := make([]string, 0, len(langs))
				for _, l := range langs {
					cols = append(cols, fmt.Sprint(e.Rules[l]))
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Name, strings.Join(cols, "\t"), e.Total, e.Description)
			}
			fmt.Fprintf(tw, "\npack version %d\n", p.Version)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
