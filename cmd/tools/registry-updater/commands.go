// cmd/tools/registry-updater/commands.go
package main

import (
	"fmt"
	"os"

	"appetite-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var addFlags struct {
	id          string
	displayName string
	description string
	category    string
	taskType    string
	version     string
	status      string
	timeout     string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new activity to the registry",
	Example: `  registry-updater add --id rank-carriers --display-name "Rank Carriers" \
    --description "Ranks carriers for a quote" --category appetite --task-type rank-carriers`,
	RunE: runAdd,
}

var updateFlags struct {
	id    string
	field string
	value string
}

var updateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Update a single field of an existing activity",
	Example: "  registry-updater update --id score-appetite-matches --field status --value verified",
	RunE:    runUpdate,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	RunE:  runValidate,
}

var syncFlags struct {
	dryRun bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the built-in appetite task types into the registry file",
	Long:  "sync upserts every task type served by worker-manager, keeping any other activities already in the file.",
	RunE:  runSync,
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addFlags.id, "id", "", "Activity ID (required)")
	f.StringVar(&addFlags.displayName, "display-name", "", "Display name (required)")
	f.StringVar(&addFlags.description, "description", "", "Description")
	f.StringVar(&addFlags.category, "category", registry.CategoryAppetite, "Category")
	f.StringVar(&addFlags.taskType, "task-type", "", "Zeebe task type (defaults to the ID)")
	f.StringVar(&addFlags.version, "version", "1.0.0", "Version")
	f.StringVar(&addFlags.status, "status", registry.StatusPlanned, "Implementation status (planned, in-progress, completed, verified)")
	f.StringVar(&addFlags.timeout, "timeout", "10s", "Job timeout")
	_ = addCmd.MarkFlagRequired("id")
	_ = addCmd.MarkFlagRequired("display-name")

	u := updateCmd.Flags()
	u.StringVar(&updateFlags.id, "id", "", "Activity ID to update (required)")
	u.StringVar(&updateFlags.field, "field", "", "Field to update: status, version, displayName, description, category, taskType, timeout, retries")
	u.StringVar(&updateFlags.value, "value", "", "New value for the field")
	_ = updateCmd.MarkFlagRequired("id")
	_ = updateCmd.MarkFlagRequired("field")
	_ = updateCmd.MarkFlagRequired("value")

	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "Report changes without writing the file")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	reg, err := loadOrEmpty(registryPath)
	if err != nil {
		return err
	}

	taskType := addFlags.taskType
	if taskType == "" {
		taskType = addFlags.id
	}
	activity := registry.Activity{
		ID:                   addFlags.id,
		DisplayName:          addFlags.displayName,
		Description:          addFlags.description,
		Category:             addFlags.category,
		Version:              addFlags.version,
		TaskType:             taskType,
		ImplementationStatus: addFlags.status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              addFlags.timeout,
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry invalid after add: %w", err)
	}
	if err := registry.SaveRegistry(reg, registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
	return nil
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.SetField(updateFlags.id, updateFlags.field, updateFlags.value); err != nil {
		return err
	}
	if err := registry.SaveRegistry(reg, registryPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateFlags.id, updateFlags.field, updateFlags.value)
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed:\n%w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	reg, err := loadOrEmpty(registryPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, a := range registry.Default().Activities {
		if reg.Upsert(a) {
			fmt.Fprintf(out, "updated %s\n", a.ID)
		} else {
			fmt.Fprintf(out, "added   %s\n", a.ID)
		}
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry invalid after sync: %w", err)
	}
	if syncFlags.dryRun {
		fmt.Fprintln(out, "dry run: registry not written")
		return nil
	}
	if err := registry.SaveRegistry(reg, registryPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registry synced to %s (%d activities)\n", registryPath, len(reg.Activities))
	return nil
}

func loadOrEmpty(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return &registry.ActivityRegistry{Version: "1.0.0", Activities: []registry.Activity{}}, nil
	}
	return nil, fmt.Errorf("failed to load registry: %w", err)
}
