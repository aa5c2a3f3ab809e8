package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"marginalia/internal/annot"
	"marginalia/internal/config"
	"marginalia/internal/errors"
	"marginalia/internal/ops"
	"marginalia/internal/session"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "marginalia",
		Usage:   "Annotation identity resolution engine",
		Version: Version,
		Commands: []*cli.Command{
			reconcileCmd(db, cfg),
			historyCmd(db),
			exportCmd(db),
			purgeCmd(db),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// reconcilePayload is the JSON document the reconcile command reads on stdin.
type reconcilePayload struct {
	Document string          `json:"document,omitempty"`
	Editor   []annot.Summary `json:"editor,omitempty"`
	PDF      []annot.Summary `json:"pdf,omitempty"`
}

// reconcileCmd creates the reconcile command.
func reconcileCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Fold editor and pdf candidates into the canonical list (reads JSON from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Document fingerprint (overrides the payload's)"},
			&cli.BoolFlag{Name: "snapshot", Aliases: []string{"s"}, Usage: "Record the result as a history snapshot"},
			&cli.BoolFlag{Name: "json", Usage: "Force JSON output even on a terminal"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("candidates must be piped via stdin as JSON {document, editor, pdf}"))
			}

			data, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			var payload reconcilePayload
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("parse candidates: %v", err)))
			}

			document := c.String("document")
			if document == "" {
				document = payload.Document
			}

			sess, err := session.New(document, db)
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			output, err := ops.Reconcile(sess, cfg, ops.ReconcileInput{
				Editor:   payload.Editor,
				PDF:      payload.PDF,
				Snapshot: c.Bool("snapshot"),
			})
			if err != nil {
				return outputError(err)
			}

			if renderForTerminal(c.Bool("json")) {
				fmt.Println(recordTable(output.Records))
				fmt.Printf("%d candidates, %d folded, %d hydrated\n",
					output.InputCount, output.Folded, output.Hydrated)
				if output.SnapshotID != nil {
					fmt.Printf("snapshot: %s\n", *output.SnapshotID)
				}
				return nil
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List stored reconciliation snapshots, or show one by id",
		ArgsUsage: "[snapshot-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Document fingerprint"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "json", Usage: "Force JSON output even on a terminal"},
		},
		Action: func(c *cli.Context) error {
			// Positional id → show one snapshot with its records.
			if c.NArg() > 0 {
				output, err := ops.ShowSnapshot(db, c.Args().First())
				if err != nil {
					return outputError(err)
				}
				if renderForTerminal(c.Bool("json")) {
					fmt.Println(recordTable(output.Records))
					return nil
				}
				return outputJSON(output)
			}

			output, err := ops.History(db, ops.HistoryInput{
				Document: c.String("document"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			if renderForTerminal(c.Bool("json")) {
				fmt.Println(snapshotTable(output.Items))
				fmt.Printf("%d of %d snapshots\n", len(output.Items), output.Pagination.Total)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Render a canonical list as markdown or HTML (reads records from stdin, or from a snapshot)",
		ArgsUsage: "[snapshot-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Document title"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "Output format: markdown|html"},
		},
		Action: func(c *cli.Context) error {
			var records []annot.Summary

			if c.NArg() > 0 {
				snap, err := ops.ShowSnapshot(db, c.Args().First())
				if err != nil {
					return outputError(err)
				}
				records = snap.Records
			} else {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("records must be piped via stdin, or pass a snapshot id"))
				}
				data, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				records, err = decodeRecords(data)
				if err != nil {
					return outputError(err)
				}
			}

			output, err := ops.Export(ops.ExportInput{
				Title:   c.String("title"),
				Records: records,
				Format:  c.String("format"),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Print(output.Content)
			return nil
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete stored snapshots for a document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Document fingerprint"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge snapshots older than N days (e.g., 7d)"},
			&cli.BoolFlag{Name: "memory", Usage: "Also clear the document's persisted field memory"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{
				Document: c.String("document"),
				Memory:   c.Bool("memory"),
			}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Before = time.Now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
			}

			output, err := ops.Purge(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// decodeRecords accepts either a bare JSON array of summaries or an object
// with a records field, so reconcile output can be piped straight to export.
func decodeRecords(data string) ([]annot.Summary, error) {
	trimmed := strings.TrimSpace(data)
	if strings.HasPrefix(trimmed, "[") {
		var records []annot.Summary
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("parse records: %v", err))
		}
		return records, nil
	}

	var wrapper struct {
		Records []annot.Summary `json:"records"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("parse records: %v", err))
	}
	return wrapper.Records, nil
}

// renderForTerminal reports whether output should be a table: stdout is a
// terminal and JSON was not forced.
func renderForTerminal(forceJSON bool) bool {
	return !forceJSON && isatty.IsTerminal(os.Stdout.Fd())
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if appErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
