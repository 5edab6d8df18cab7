package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sipeed/chanscout/pkg/discovery"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [text...]",
		Short: "Show how the keyword filter sees a piece of text",
		Long: `check prints the normalized text, which include/exclude keywords match,
whether the text passes the filter and its score. Without arguments it
opens an interactive prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := cfg.BuildFilter()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				explain(cmd.OutOrStdout(), f, strings.Join(args, " "))
				return nil
			}
			return checkREPL(cmd.OutOrStdout(), f)
		},
	}
}

func checkREPL(w io.Writer, f *discovery.Filter) error {
	rl, err := readline.New("check> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		explain(w, f, line)
	}
}

func explain(w io.Writer, f *discovery.Filter, text string) {
	norm := discovery.Normalize(text)
	fmt.Fprintf(w, "normalized: %s\n", norm)

	for _, p := range f.Exclude() {
		if p.Match(norm) {
			fmt.Fprintf(w, "  exclude %q matched\n", p.Keyword())
		}
	}
	for _, c := range f.Classes() {
		for _, p := range c.Patterns {
			if p.Match(norm) {
				fmt.Fprintf(w, "  %s %q matched (+%d)\n", c.Name, p.Keyword(), c.Weight)
			}
		}
	}

	passed, score := f.Check(text)
	verdict := "FAIL"
	if passed {
		verdict = "PASS"
	}
	fmt.Fprintf(w, "%s score=%d\n", verdict, score)
}
