package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"cotiza-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("validation failed")

func newRootCmd() *cobra.Command {
	var registryPath string

	root := &cobra.Command{
		Use:          "registry-check",
		Short:        "Inspect and validate the activity registry",
		Long:         `Lists, validates and updates configs/activity-registry.json and checks job variables against its input schemas.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	load := func() (*registry.ActivityRegistry, error) {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
		return reg, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered activities",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := load()
				if err != nil {
					return err
				}
				return runList(cmd.OutOrStdout(), reg)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the registry structure",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := load()
				if err != nil {
					return err
				}
				return runValidate(cmd.OutOrStdout(), reg)
			},
		},
		newCheckCmd(load),
		newUpdateCmd(load, &registryPath),
	)
	return root
}

func newCheckCmd(load func() (*registry.ActivityRegistry, error)) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check <task-type>",
		Short: "Check job variables against a task type's input schema",
		Example: `  registry-check check rank-vehicles --file vars.json
  cat vars.json | registry-check check create-lead`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runCheck(cmd.OutOrStdout(), reg, args[0], in)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with job variables, - for stdin")
	return cmd
}

func newUpdateCmd(load func() (*registry.ActivityRegistry, error), path *string) *cobra.Command {
	return &cobra.Command{
		Use:     "update <id> <field> <value>",
		Short:   "Update one field of an activity",
		Example: `  registry-check update search-vehicles status verified`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			if err := reg.Update(args[0], args[1], args[2]); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func runList(w io.Writer, reg *registry.ActivityRegistry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES\tERROR CODES")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
	}
	return tw.Flush()
}

func runValidate(w io.Writer, reg *registry.ActivityRegistry) error {
	errs := reg.Validate()
	if len(errs) == 0 {
		fmt.Fprintf(w, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	}
	for _, err := range errs {
		fmt.Fprintf(w, "  - %v\n", err)
	}
	return fmt.Errorf("%w: %d problems", errInvalid, len(errs))
}

func runCheck(w io.Writer, reg *registry.ActivityRegistry, taskType string, in io.Reader) error {
	var vars map[string]interface{}
	if err := json.NewDecoder(in).Decode(&vars); err != nil {
		return fmt.Errorf("decode job variables: %w", err)
	}

	result, err := reg.ValidateInput(taskType, vars)
	if err != nil {
		return err
	}
	if result.Valid {
		fmt.Fprintf(w, "%s: variables match the input schema\n", taskType)
		return nil
	}
	for _, msg := range result.GetErrorMessages() {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return fmt.Errorf("%w: %s input", errInvalid, taskType)
}
