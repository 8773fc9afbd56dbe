package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// generate command flags
	genOwner      string
	genWait       bool
	genTimeout    time.Duration
	genOutputJSON bool
)

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(operationCmd)

	generateCmd.Flags().StringVar(&genOwner, "owner", "", "Owner recorded on the plan")
	generateCmd.Flags().BoolVar(&genWait, "wait", true, "Poll until the plan is ready")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 2*time.Minute, "How long to wait for the plan")
	generateCmd.Flags().BoolVar(&genOutputJSON, "json", false, "Output results as JSON")
	operationCmd.Flags().BoolVar(&genOutputJSON, "json", false, "Output results as JSON")
}

var generateCmd = &cobra.Command{
	Use:   "generate <goal>",
	Short: "Generate a task plan for a goal",
	Long: `Submit a free-text goal to plannerd and print the generated plan.

Generation is asynchronous on the server; by default planctl polls the
operation until it completes.

Examples:
  # Generate and wait for the plan
  planctl generate "Launch a podcast about urban gardening"

  # Submit without waiting, print the operation id
  planctl generate "Plan a product launch" --wait=false

  # Record an owner and output JSON
  planctl generate "Write a novel" --owner alice --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	goal := args[0]
	if goal == "" {
		return fmt.Errorf("goal must not be empty")
	}

	var accepted generateAccepted
	err := postJSON("/api/v1/plans", generateRequest{Goal: goal, Owner: genOwner}, &accepted, 202)
	if err != nil {
		return err
	}

	if !genWait {
		if genOutputJSON {
			return outputJSON(accepted)
		}
		fmt.Printf("Operation ID: %s\n", accepted.OperationID)
		fmt.Printf("Poll with: planctl operation %s\n", accepted.OperationID)
		return nil
	}

	op, err := pollOperation(accepted.OperationID, genTimeout)
	if err != nil {
		return err
	}

	if op.Status == "failed" {
		return fmt.Errorf("plan generation failed: %s", op.Error)
	}

	if genOutputJSON {
		return outputJSON(op.Plan)
	}

	if op.Cached {
		fmt.Fprintln(os.Stderr, "[planctl] Served from cache")
	}
	fmt.Print(renderPlan(op.Plan))
	return nil
}

// pollOperation polls the operation endpoint until a terminal status or the
// timeout elapses.
func pollOperation(opID string, timeout time.Duration) (*operation, error) {
	deadline := time.Now().Add(timeout)
	interval := 250 * time.Millisecond

	for {
		var op operation
		if err := getJSON("/api/v1/operations/"+url.PathEscape(opID), &op); err != nil {
			return nil, err
		}
		if op.Status == "completed" || op.Status == "failed" {
			return &op, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out after %s waiting for operation %s", timeout, opID)
		}

		time.Sleep(interval)
		if interval < 2*time.Second {
			interval *= 2
		}
	}
}

var operationCmd = &cobra.Command{
	Use:   "operation <operation-id>",
	Short: "Show the status of a plan-generation operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var op operation
		if err := getJSON("/api/v1/operations/"+url.PathEscape(args[0]), &op); err != nil {
			return err
		}
		if genOutputJSON {
			return outputJSON(op)
		}

		fmt.Printf("Operation: %s\n", op.ID)
		fmt.Printf("Status: %s\n", op.Status)
		fmt.Printf("Goal: %s\n", op.Goal)
		if op.Error != "" {
			fmt.Printf("Error: %s\n", op.Error)
		}
		if op.Plan != nil {
			fmt.Println()
			fmt.Print(renderPlan(op.Plan))
		}
		return nil
	},
}
