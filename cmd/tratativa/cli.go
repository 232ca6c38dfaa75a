package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
	"github.com/hpungsan/tratativa/internal/ops"
	"github.com/hpungsan/tratativa/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env ops.Env) *cli.App {
	app := &cli.App{
		Name:    "tratativa",
		Usage:   "Verification checklist helper: answers, contacts, generated code and comment",
		Version: Version,
		Commands: []*cli.Command{
			questionsCmd(),
			showCmd(env),
			answerCmd(env),
			extractCmd(env),
			generateCmd(env),
			copyCmd(env),
			clearCmd(env),
			templateCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// questionsCmd creates the questions command.
func questionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "questions",
		Usage: "List the checklist questions, their ids and suggested answers",
		Action: func(c *cli.Context) error {
			return outputJSON(c, map[string]any{
				"sections":  checklist.Sections,
				"questions": checklist.Questions,
			})
		},
	}
}

// showCmd creates the show command.
func showCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the current session: answers, statuses, progress, contacts and output",
		Action: func(c *cli.Context) error {
			output, err := ops.Snapshot(c.Context, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// answerCmd creates the answer command.
func answerCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "answer",
		Usage:     "Set answers (an empty value clears the answer)",
		ArgsUsage: "<question_id>=<value> [...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("at least one <question_id>=<value> is required"))
			}
			answers, err := parseAssignments(c.Args().Slice())
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			output, err := ops.Answer(c.Context, env, ops.AnswerInput{Answers: answers})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// extractCmd creates the extract command.
func extractCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Replace the pasted contact text (reads from stdin) and extract contacts",
		Action: func(c *cli.Context) error {
			text, err := readInput(c, ops.MaxRawTextBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Extract(c.Context, env, ops.ExtractInput{RawText: text})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, map[string]any{
				"contacts": output.Contacts,
				"emails":   output.Emails,
			})
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print the generated code and comment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Aliases: []string{"f"}, Usage: "Print only one field as plain text: code|comment"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Snapshot(c.Context, env)
			if err != nil {
				return outputError(err)
			}

			switch c.String("field") {
			case "":
				return outputJSON(c, output.Output)
			case "code":
				_, err = fmt.Fprintln(c.App.Writer, output.Output.Code)
			case "comment":
				_, err = fmt.Fprint(c.App.Writer, output.Output.Comment)
			default:
				return outputError(errors.NewInvalidRequest("field must be one of: code, comment"))
			}
			return err
		},
	}
}

// copyCmd creates the copy command. A clipboard failure is only a warning:
// the text is printed so it can be copied by hand.
func copyCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Copy the code, the comment or the email list to the clipboard",
		ArgsUsage: "<code|comment|emails>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one target is required: code, comment or emails"))
			}
			target := ops.CopyTarget(c.Args().First())

			output, err := ops.Copy(c.Context, env, ops.CopyInput{Target: target})
			switch {
			case err == nil:
				fmt.Fprintf(c.App.ErrWriter, "copied %s to clipboard\n", target)
			case errors.Is(err, errors.ErrClipboardUnavailable) && output != nil:
				fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
			default:
				return outputError(err)
			}
			_, err = fmt.Fprintln(c.App.Writer, output.Text)
			return err
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Clear all answers, pasted text and contacts (templates are kept)",
		Action: func(c *cli.Context) error {
			output, err := ops.Clear(c.Context, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// templateCmd groups the template management subcommands.
func templateCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Manage the templates matched against the answers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List templates in priority order",
				Action: func(c *cli.Context) error {
					output, err := ops.ListTemplates(c.Context, env)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "save",
				Usage: "Create a template, or replace one by id with --mode=replace",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Template id (generated when omitted)"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Template name"},
					&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Required: true, Usage: "Code returned on match"},
					&cli.StringFlag{Name: "comment", Usage: "Comment returned on match"},
					&cli.StringSliceFlag{Name: "when", Aliases: []string{"w"}, Usage: "Condition <question_id>=<value> (repeatable)"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
				},
				Action: func(c *cli.Context) error {
					conditions, err := parseAssignments(c.StringSlice("when"))
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}

					output, err := ops.SaveTemplate(c.Context, env, ops.SaveTemplateInput{
						Template: checklist.Template{
							ID:         c.String("id"),
							Name:       c.String("name"),
							Code:       c.String("code"),
							Comment:    c.String("comment"),
							Conditions: conditions,
						},
						Mode: ops.SaveMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a template",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteTemplate(c.Context, env, ops.DeleteTemplateInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "move",
				Usage:     "Move a template to a 0-based position in the priority order",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "position", Aliases: []string{"p"}, Required: true, Usage: "Target position (0 is tried first)"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.MoveTemplate(c.Context, env, ops.MoveTemplateInput{
						ID:       c.Args().First(),
						Position: c.Int("position"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "reset",
				Usage: "Replace all templates with the built-in defaults",
				Action: func(c *cli.Context) error {
					output, err := ops.ResetTemplates(c.Context, env)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "export",
				Usage: "Export templates to a .jsonl or .yaml file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.tratativa/exports/templates-<timestamp>.<format>)"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "jsonl", Usage: "Format for the default path: jsonl|yaml"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ExportTemplates(c.Context, env, ops.ExportTemplatesInput{
						Path:   c.String("path"),
						Format: ops.FileFormat(c.String("format")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:      "import",
				Usage:     "Import templates from a .jsonl or .yaml file",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "append", Usage: "Import mode: append|replace"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ImportTemplates(c.Context, env, ops.ImportTemplatesInput{
						Path: c.Args().First(),
						Mode: ops.ImportMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the browser UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Interface to bind (default from config: 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config: 8484)"},
		},
		Action: func(c *cli.Context) error {
			bind := env.Config.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.Config.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid port: %d", port)))
			}

			srv, err := web.NewServer(env, Version, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, env.Logger); err != nil {
				return cli.Exit(fmt.Sprintf("server error: %v", err), 1)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON writes v to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var tErr *errors.TratativaError
	if stderrors.As(err, &tErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseAssignments parses "<key>=<value>" arguments. The value may be empty
// and may itself contain "=".
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected <question_id>=<value>, got %q", arg)
		}
		out[key] = value
	}
	return out, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readInput reads all of the app's reader, up to limit bytes. Reading an
// interactive terminal is refused so the command does not hang.
func readInput(c *cli.Context, limit int) (string, error) {
	r := c.App.Reader
	if r == nil {
		r = os.Stdin
	}
	if r == os.Stdin && !stdinHasData() {
		return "", errors.NewInvalidRequest("text must be piped via stdin")
	}
	return readLimited(r, limit)
}

// readLimited reads r fully, failing when it holds more than limit bytes.
func readLimited(r io.Reader, limit int) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if len(data) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return string(data), nil
}
