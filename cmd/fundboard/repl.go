package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/fundboard/fundboard/internal/dashboard"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read tickers from stdin and print a summary for each",
	Long: `Each line is submitted as a new query. A line entered while an earlier
query is still loading cancels that query; only the latest answer is shown.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := dashboard.NewSession(buildPipeline(cfg, log, nil).service)
	return repl(ctx, session, os.Stdin, os.Stdout)
}

// repl submits each input line without waiting for the previous answer.
func repl(ctx context.Context, session *dashboard.Session, in io.Reader, out io.Writer) error {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		say = func(format string, a ...any) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, format, a...)
		}
	)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		wg.Add(1)
		err := session.SubmitAsync(ctx, query, func(snap *core.FinancialSnapshot, err error) {
			defer wg.Done()
			switch {
			case err == nil:
				say("%s\n", summary(snap))
			case errors.Is(err, core.ErrStaleQuery), errors.Is(err, context.Canceled):
			default:
				say("%s: %v\n", query, err)
			}
		})
		if err != nil {
			wg.Done()
			say("%s: %v\n", query, err)
		}
	}
	wg.Wait()
	return scanner.Err()
}

func summary(s *core.FinancialSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", s.Ticker, s.Category)
	for _, name := range core.AllSeries {
		n := len(s.Earnings)
		if name != core.SeriesEarnings {
			n = len(s.Monetary()[name])
		}
		fmt.Fprintf(&b, " %s=%d", name, n)
	}
	if s.IsSynthetic {
		fmt.Fprintf(&b, "\n  %s", s.Notice)
	}
	return b.String()
}
