package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netscore/pkg/score"
)

// Output formats for the score command.
const (
	formatNDJSON = "ndjson"
	formatTable  = "table"
)

func (c *CLI) scoreCommand() *cobra.Command {
	var (
		file   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "score [url...]",
		Short: "Rate repositories by URL",
		Long: `Score GitHub repositories or npm packages on bus factor, ramp-up,
correctness, responsiveness, license, dependency pinning and reviewed code.

URLs come from the arguments and from --file (one per line, "-" for stdin).
Each result is printed as one JSON object per line.`,
		Example: `  netscore score https://github.com/expressjs/express
  netscore score --file urls.txt
  cat urls.txt | netscore score -f - --format table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := append([]string(nil), args...)
			if file != "" {
				more, err := readURLs(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				urls = append(urls, more...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs given")
			}
			if format != formatNDJSON && format != formatTable {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatNDJSON, formatTable)
			}

			ctx := cmd.Context()
			r, _, err := c.runner(ctx)
			if err != nil {
				return err
			}
			defer r.Close(ctx)

			prog := newProgress(loggerFromContext(ctx))
			var spin *Spinner
			if format == formatTable {
				spin = newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Scoring %d repositories...", len(urls)))
				spin.Start()
			}
			records, err := r.ScoreAll(ctx, urls)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Scored %d repositories", len(records)))

			if format == formatTable {
				return printScoreTable(cmd.OutOrStdout(), records)
			}
			return writeNDJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `file with one URL per line ("-" for stdin)`)
	cmd.Flags().StringVar(&format, "format", formatNDJSON, "output format: ndjson or table")

	return cmd
}

// readURLs reads one URL per line, skipping blanks and # comments.
func readURLs(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open url file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}

func writeNDJSON(w io.Writer, records []score.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func printScoreTable(w io.Writer, records []score.Record) error {
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, StyleTitle.Render(rec.URL))
		printScoreBar(w, "NetScore", rec.NetScore)
		for _, m := range rec.Metrics {
			printScoreBar(w, m.Name, m.Value)
		}
		printDetail(w, "computed in %.3fs", rec.NetScoreLatency)
	}
	return nil
}
