package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sipeed/chanscout/pkg/config"
	"github.com/sipeed/chanscout/pkg/directory"
	"github.com/sipeed/chanscout/pkg/scout"
	"github.com/spf13/cobra"
)

// newDirectory picks the result source: a file when from is set, the HTTP
// directory when DIRECTORY_URL is set, nothing otherwise.
func newDirectory(cfg *config.Config, from string) (directory.Searcher, error) {
	if from != "" {
		src, err := directory.LoadFile(from, directory.WithFileGroups(cfg.IncludeGroups))
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if cfg.DirectoryURL == "" {
		return nil, nil
	}
	client, err := directory.NewHTTPClient(cfg.DirectoryURL,
		directory.WithToken(cfg.DirectoryToken),
		directory.WithRate(cfg.DirectoryRPS),
		directory.WithTimeout(cfg.DirectoryTimeout),
		directory.WithGroups(cfg.IncludeGroups),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newService(cfg *config.Config, from string) (*scout.Service, error) {
	filter, err := cfg.BuildFilter()
	if err != nil {
		return nil, err
	}
	dir, err := newDirectory(cfg, from)
	if err != nil {
		return nil, err
	}
	return scout.NewService(*cfg, dir, filter), nil
}

func searchCmd() *cobra.Command {
	var (
		from    string
		top     int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the ranked channels",
		Example: `  chanscout search "gulf news"
  chanscout search جمال --from results.json --top 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := newService(cfg, from)
			if err != nil {
				return err
			}

			res, err := svc.Search(context.Background(), scout.SearchRequest{
				Query: strings.Join(args, " "),
				TopN:  top,
			})
			if err != nil {
				if scout.IsQueueFull(err) {
					return fmt.Errorf("busy/queue_full retry_after_seconds=%d", svc.RetryAfterSeconds())
				}
				return fmt.Errorf("search error: %w", err)
			}
			return printResult(cmd, res, jsonOut)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "read directory results from a JSON or YAML file")
	cmd.Flags().IntVar(&top, "top", 0, "number of results (default TOP_N, capped at MAX_TOP_N)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func printResult(cmd *cobra.Command, res *scout.SearchResult, jsonOut bool) error {
	w := cmd.OutOrStdout()
	if jsonOut {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	}

	fmt.Fprintf(w, "Query: %s\n", res.Query)
	fmt.Fprintf(w, "Items: %d | Candidates: %d | Skipped: %d\n", len(res.Items), res.Candidates, res.Skipped)
	for i, item := range res.Items {
		members := "?"
		if item.MemberCount != nil {
			members = fmt.Sprint(*item.MemberCount)
		}
		fmt.Fprintf(w, "%d. [%s] %s score=%d members=%s\n", i+1, item.Kind, item.Title, item.Score, members)
		if item.Link != "" {
			fmt.Fprintf(w, "   %s\n", item.Link)
		}
		if item.Snippet != "" {
			fmt.Fprintf(w, "   %s\n", item.Snippet)
		}
	}
	if len(res.Notes) > 0 {
		fmt.Fprintln(w, "Notes:")
		for _, n := range res.Notes {
			fmt.Fprintf(w, "- %s\n", n)
		}
	}
	return nil
}
