package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kmd/mea/health"
)

// errNotHealthy makes the check command exit non-zero.
var errNotHealthy = errors.New("service is not healthy")

func newCheckCmd(opts *options) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the health checks once and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			report := a.executor.Execute(cmd.Context(), tag)
			if err := writeReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Status != health.StatusHealthy {
				return fmt.Errorf("%w: %s", errNotHealthy, report.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", `only run checks with this tag (e.g. "ready")`)

	return cmd
}

func writeReport(w io.Writer, report *health.Report) error {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", body)
	return err
}

func newChecksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the registered health checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close(cmd.Context()) }()

			return listChecks(cmd.OutOrStdout(), a.registry, a.cfg.Executor.DefaultTimeout.Duration.String())
		},
	}
}

func listChecks(out io.Writer, reg *health.Registry, defaultTimeout string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTAGS\tTIMEOUT")
	for _, name := range reg.Names() {
		entry, _ := reg.Lookup(name)
		tags := strings.Join(entry.Tags, ",")
		if tags == "" {
			tags = "-"
		}
		timeout := defaultTimeout
		if entry.Timeout > 0 {
			timeout = entry.Timeout.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, tags, timeout)
	}
	return w.Flush()
}
