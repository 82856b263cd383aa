// Package main posts sample test execution events to a running testdash
// instance. Each project posts all its suites in a single request, so one
// invocation leaves a small browsable event history in the dashboard.
//
// Usage:
//
//	API_URL=http://localhost:3000 go run ./cmd/postresults
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

type caseResult struct {
	CaseID       string `json:"case_id"`
	CaseName     string `json:"case_name"`
	Description  string `json:"description,omitempty"`
	Module       string `json:"module"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	DurationMs   int    `json:"duration_ms"`
}

type suiteResult struct {
	SuiteName string       `json:"suite_name"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Cases     []caseResult `json:"cases"`
}

type event struct {
	ProjectName string        `json:"project_name"`
	EventName   string        `json:"event_name"`
	Trigger     string        `json:"trigger"`
	Suites      []suiteResult `json:"suites"`
}

type ingestResponse struct {
	ID      int64   `json:"id"`
	EventID int64   `json:"event_id"`
	RunIDs  []int64 `json:"run_ids"`
}

// sampleEvents is one execution event per project. All suites in an event
// are aggregated into a single event record server-side.
var sampleEvents = []event{
	{
		ProjectName: "my-api",
		EventName:   "Sanity Check",
		Trigger:     "ci",
		Suites: []suiteResult{
			{
				SuiteName: "auth",
				Total:     4,
				Passed:    3,
				Failed:    1,
				Cases: []caseResult{
					{CaseID: "1.1", CaseName: "Login with valid credentials", Description: "User logs in with correct email/password", Module: "authentication", Type: "positive", Status: "pass", DurationMs: 120},
					{CaseID: "1.2", CaseName: "Login with invalid password", Description: "User gets error with wrong password", Module: "authentication", Type: "negative", Status: "pass", DurationMs: 85},
					{CaseID: "1.3", CaseName: "Token refresh", Description: "Expired token gets refreshed", Module: "authentication", Type: "positive", Status: "pass", DurationMs: 200},
					{CaseID: "1.4", CaseName: "Register duplicate email", Description: "Duplicate registration is rejected", Module: "registration", Type: "negative", Status: "fail", ErrorMessage: "Expected 409 but got 500: Internal Server Error", DurationMs: 340},
				},
			},
			{
				SuiteName: "users",
				Total:     3,
				Passed:    3,
				Failed:    0,
				Cases: []caseResult{
					{CaseID: "2.1", CaseName: "Get user profile", Module: "profile", Type: "positive", Status: "pass", DurationMs: 55},
					{CaseID: "2.2", CaseName: "Update user avatar", Module: "profile", Type: "positive", Status: "pass", DurationMs: 310},
					{CaseID: "2.3", CaseName: "Delete user account", Module: "account", Type: "positive", Status: "pass", DurationMs: 150},
				},
			},
		},
	},
	{
		ProjectName: "manajemen-distrik",
		EventName:   "E2E Run 2026-03-01 14:30",
		Trigger:     "manual",
		Suites: []suiteResult{
			{SuiteName: "01-login", Total: 10, Passed: 10, Failed: 0, Cases: []caseResult{}},
			{SuiteName: "04-audit-trail", Total: 7, Passed: 7, Failed: 0, Cases: []caseResult{}},
			{SuiteName: "05-dashboard", Total: 3, Passed: 3, Failed: 0, Cases: []caseResult{}},
			{SuiteName: "06-access-control", Total: 8, Passed: 7, Failed: 1, Cases: []caseResult{}},
			{SuiteName: "07-role-matrix", Total: 25, Passed: 25, Failed: 0, Cases: []caseResult{}},
		},
	},
	{
		ProjectName: "web-app",
		EventName:   "Sanity Check",
		Trigger:     "ci",
		Suites: []suiteResult{
			{
				SuiteName: "dashboard",
				Total:     3,
				Passed:    2,
				Failed:    1,
				Cases: []caseResult{
					{CaseID: "1.1", CaseName: "Load dashboard page", Module: "ui", Type: "positive", Status: "pass", DurationMs: 400},
					{CaseID: "1.2", CaseName: "Filter by date range", Module: "ui", Type: "positive", Status: "pass", DurationMs: 220},
					{CaseID: "1.3", CaseName: "Export CSV with no data", Module: "export", Type: "negative", Status: "fail", ErrorMessage: "Timeout: export took longer than 5000ms", DurationMs: 5001},
				},
			},
			{
				SuiteName: "payments",
				Total:     4,
				Passed:    4,
				Failed:    0,
				Cases: []caseResult{
					{CaseID: "3.1", CaseName: "Process valid payment", Module: "billing", Type: "positive", Status: "pass", DurationMs: 800},
					{CaseID: "3.2", CaseName: "Reject expired card", Module: "billing", Type: "negative", Status: "pass", DurationMs: 150},
					{CaseID: "3.3", CaseName: "Apply discount code", Module: "billing", Type: "positive", Status: "pass", DurationMs: 180},
					{CaseID: "3.4", CaseName: "Refund processed payment", Module: "billing", Type: "positive", Status: "pass", DurationMs: 600},
				},
			},
		},
	},
}

func postEvent(ctx context.Context, client *http.Client, baseURL string, ev event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/results", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated {
		text, _ := io.ReadAll(resp.Body)

		return fmt.Errorf("POST failed (%d): %s", resp.StatusCode, string(text))
	}

	var created ingestResponse

	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	suiteNames := make([]string, 0, len(ev.Suites))
	for _, s := range ev.Suites {
		suiteNames = append(suiteNames, s.SuiteName)
	}

	fmt.Printf("  Event #%d — %q [%s] — suites: %s\n", created.EventID, ev.EventName, ev.Trigger, strings.Join(suiteNames, ", "))

	return nil
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	client := &http.Client{Timeout: requestTimeout}

	fmt.Printf("Posting test events to %s...\n\n", baseURL)

	for _, ev := range sampleEvents {
		fmt.Printf("Project: %s\n", ev.ProjectName)

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := postEvent(ctx, client, baseURL, ev)

		cancel()

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Println()
	}

	fmt.Println("Done. Open the dashboard and select a project to browse event history.")
}
