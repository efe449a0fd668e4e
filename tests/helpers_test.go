package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"
)

const baseURL = "http://localhost:8080"

// requireServer skips the suite when no server is listening. These tests run
// against a live instance started separately.
func requireServer(t *testing.T) {
	t.Helper()

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		t.Skipf("server not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()
}

// uploadCSV posts a CSV payload through the ingestion endpoint and returns
// the decoded import run.
func uploadCSV(t *testing.T, groupKey, fileName, csv string) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to build form file: %v", err)
	}
	if _, err := io.WriteString(part, csv); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}
	if err := writer.WriteField("groupKey", groupKey); err != nil {
		t.Fatalf("failed to write group key: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/ingest", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Actor-Id", "e2e-suite")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("ingest request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ingest returned %d: %s", resp.StatusCode, string(body))
	}

	var run map[string]interface{}
	if err := json.Unmarshal(body, &run); err != nil {
		t.Fatalf("failed to parse import run: %v\nRaw: %s", err, string(body))
	}
	return run
}

// getJSON fetches a path and decodes the JSON body.
func getJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to parse response: %v\nRaw: %s", err, string(body))
	}
	return payload
}

// getJSONList fetches a path whose body is a JSON array.
func getJSONList(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	resp, err := http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	var payload []map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to parse response: %v\nRaw: %s", err, string(body))
	}
	return payload
}

func summaryCount(t *testing.T, run map[string]interface{}, field string) int {
	t.Helper()

	summary, ok := run["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("import run missing summary: %+v", run)
	}
	value, ok := summary[field].(float64)
	if !ok {
		t.Fatalf("summary missing %q: %+v", field, summary)
	}
	return int(value)
}

func uniqueGroup(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
