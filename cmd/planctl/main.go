// Package main implements the planctl CLI for manual operations against the
// plannerd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the plannerd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "CLI for plannerd HTTP server operations",
	Long: `planctl is a command-line interface for interacting with the plannerd HTTP server.
It submits goals for plan generation, retrieves stored plans, and checks server health.`,
	Version: version,
}

func init() {
	defaultServer := os.Getenv("PLANNER_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8420"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "plannerd server URL")
}

// Wire types mirror internal/http/types.go.

type generateRequest struct {
	Goal  string `json:"goal"`
	Owner string `json:"owner,omitempty"`
}

type generateAccepted struct {
	OperationID string `json:"operation_id"`
}

type taskBreakdown struct {
	TaskName     string `json:"task_name"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Dependencies string `json:"dependencies"`
	Phase        string `json:"phase"`
	Priority     string `json:"priority"`
}

type plan struct {
	ID        string          `json:"id"`
	Goal      string          `json:"goal"`
	Owner     string          `json:"owner,omitempty"`
	Tasks     []taskBreakdown `json:"tasks"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}

type operation struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Goal      string `json:"goal"`
	Plan      *plan  `json:"plan,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Providers int    `json:"providers"`
	Cache     string `json:"cache"`
	Store     string `json:"store"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// getJSON fetches path from the server and decodes the response into out.
func getJSON(path string, out interface{}) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON sends body to path and decodes the response into out when the
// server answers with want.
func postJSON(path string, body, out interface{}, want int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
