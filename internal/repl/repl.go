package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/executor"
)

const (
	queryPrompt = "Query> "
	pathPrompt  = "Enter the full path to your CSV file: "
	explainVerb = "EXPLAIN "
)

// Engine is the part of the query engine the shell drives
type Engine interface {
	Query(query string) (*executor.Result, error)
	Explain(query string) (string, error)
}

// Shell reads queries line by line and prints results as tables.
// Input is read on a separate goroutine so a canceled context ends the
// shell while it waits for a line.
type Shell struct {
	scanner *bufio.Scanner
	out     io.Writer

	start   sync.Once
	lines   chan string
	scanErr error
}

func New(in io.Reader, out io.Writer) *Shell {
	return &Shell{
		scanner: bufio.NewScanner(in),
		out:     out,
		lines:   make(chan string),
	}
}

// next waits for the next input line. ok is false at end of input or when
// ctx is done.
func (s *Shell) next(ctx context.Context) (string, bool) {
	s.start.Do(func() {
		go func() {
			defer close(s.lines)
			for s.scanner.Scan() {
				s.lines <- s.scanner.Text()
			}
			s.scanErr = s.scanner.Err()
		}()
	})

	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

// PromptPath asks for a CSV path until the answer names an existing .csv file.
// It returns io.ErrUnexpectedEOF when the input ends first and ctx.Err()
// when ctx is done.
func (s *Shell) PromptPath(ctx context.Context) (string, error) {
	for {
		fmt.Fprint(s.out, pathPrompt)
		line, ok := s.next(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if s.scanErr != nil {
				return "", s.scanErr
			}
			return "", io.ErrUnexpectedEOF
		}

		path := strings.TrimSpace(line)
		if isCSVFile(path) {
			return path, nil
		}
		fmt.Fprintln(s.out, "Invalid file path. Please ensure the file exists and is a CSV file.")
	}
}

func isCSVFile(path string) bool {
	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Run loops until exit, \q, end of input or ctx is done.
// Lines starting with EXPLAIN print the plan instead of running the query.
func (s *Shell) Run(ctx context.Context, eng Engine) error {
	fmt.Fprintln(s.out, `Data loaded. Enter your query (or type "exit" to quit)`)

	for {
		fmt.Fprint(s.out, "\n"+queryPrompt)
		raw, ok := s.next(ctx)
		if !ok {
			if ctx.Err() != nil {
				fmt.Fprintln(s.out)
				return nil
			}
			return s.scanErr
		}
		line := strings.TrimSpace(raw)

		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") || line == `\q` {
			return nil
		}

		if len(line) > len(explainVerb) && strings.EqualFold(line[:len(explainVerb)], explainVerb) {
			tree, err := eng.Explain(strings.TrimSpace(line[len(explainVerb):]))
			if err != nil {
				printError(s.out, err)
				continue
			}
			fmt.Fprint(s.out, tree)
			continue
		}

		result, err := eng.Query(line)
		if err != nil {
			printError(s.out, err)
			continue
		}
		PrintResult(s.out, result)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", errors.Normalize(err, errors.ExecutionError).Error())
}

// PrintResult writes the row count followed by an aligned table
func PrintResult(w io.Writer, res *executor.Result) {
	fmt.Fprintf(w, "Found %d results:\n", len(res.Rows))
	if len(res.Columns) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))

	separator := make([]string, len(res.Columns))
	for i := range separator {
		separator[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(separator, "\t"))

	cells := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			v, _ := row.Get(col)
			cells[i] = v.String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
