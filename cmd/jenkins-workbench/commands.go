package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jenkinsapi/jenkins-workbench/internal/configxml"
	"github.com/jenkinsapi/jenkins-workbench/internal/jenkins"
)

// withFacade wraps a command body that needs a live controller.
func withFacade(run func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, _, facade, _, err := setup()
		if err != nil {
			return err
		}
		return run(cmd.Context(), facade, cmd.OutOrStdout(), args)
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func paramsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Read and edit a job's string parameters",
	}

	list := &cobra.Command{
		Use:   "list JOB",
		Short: "List parameter defaults",
		Args:  cobra.ExactArgs(1),
		RunE: withFacade(func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
			values, err := f.JobParameters(ctx, args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s=%s\n", name, values[name])
			}
			return nil
		}),
	}

	get := &cobra.Command{
		Use:   "get JOB NAME",
		Short: "Show one parameter definition",
		Args:  cobra.ExactArgs(2),
		RunE: withFacade(func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
			p, err := f.JobParameter(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(out, p)
		}),
	}

	set := &cobra.Command{
		Use:   "set JOB NAME VALUE",
		Short: "Change a parameter's default value",
		Args:  cobra.ExactArgs(3),
		RunE: withFacade(func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
			res, err := f.SetJobParameter(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if !res.Found {
				fmt.Fprintf(out, "%s has no parameter %s, nothing changed\n", args[0], args[1])
			}
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add JOB NAME [DEFAULT]",
		Short: "Add a string parameter",
		Args:  cobra.RangeArgs(2, 3),
		RunE: withFacade(func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
			def := ""
			if len(args) == 3 {
				def = args[2]
			}
			return f.CreateJobParameter(ctx, args[0], args[1], def)
		}),
	}

	del := &cobra.Command{
		Use:   "delete JOB NAME",
		Short: "Remove a parameter",
		Args:  cobra.ExactArgs(2),
		RunE: withFacade(func(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
			found, err := f.DeleteJobParameter(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(out, "%s has no parameter %s, nothing changed\n", args[0], args[1])
			}
			return nil
		}),
	}

	cmd.AddCommand(list, get, set, add, del)
	return cmd
}

func jobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Job operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "move JOB FOLDER",
		Short: "Move a job into a folder (copy config, then delete the original)",
		Args:  cobra.ExactArgs(2),
		RunE:  withFacade(moveJob),
	})
	return cmd
}

// moveJob prints the move result even when the move failed half way.
func moveJob(ctx context.Context, f *jenkins.Facade, out io.Writer, args []string) error {
	res, err := f.MoveJob(ctx, args[0], args[1])
	if perr := printJSON(out, res); err == nil {
		err = perr
	}
	return err
}

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View helpers",
	}

	var (
		viewType string
		jobs     []string
	)
	generate := &cobra.Command{
		Use:   "generate NAME",
		Short: "Print a view config.xml without contacting the controller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := configxml.GenerateView(args[0], viewType, jobs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	generate.Flags().StringVarP(&viewType, "type", "t", "listview", "view type (listview or myview)")
	generate.Flags().StringSliceVarP(&jobs, "job", "j", nil, "job to include (repeatable)")

	cmd.AddCommand(generate)
	return cmd
}
