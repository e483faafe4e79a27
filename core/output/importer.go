package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kevinaugment/laserspechub/core"
)

const (
	DefaultImportURL = "http://localhost:3000/api/admin/import"
	importTimeout    = 60 * time.Second
)

// ImportResult is the Import Service response.
type ImportResult struct {
	Success  bool `json:"success"`
	Inserted int  `json:"inserted"`
	Updated  int  `json:"updated"`
}

// ImportError reports a failed or rejected import.
type ImportError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ImportError) Error() string {
	if e.StatusCode != http.StatusOK {
		return fmt.Sprintf("import service %s returned %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("import service %s reported failure: %s", e.URL, e.Body)
}

// Importer posts records to the Import Service.
type Importer struct {
	URL    string
	client *http.Client
}

// NewImporter creates an Importer for url, or DefaultImportURL when empty.
func NewImporter(url string) *Importer {
	if url == "" {
		url = DefaultImportURL
	}
	return &Importer{
		URL:    url,
		client: &http.Client{Timeout: importTimeout},
	}
}

// Import sends {"records": [...]} and returns the service's counts. A non-2xx
// status or success=false is an *ImportError.
func (im *Importer) Import(ctx context.Context, records []core.EquipmentRecord) (*ImportResult, error) {
	bodyBytes, err := json.Marshal(Payload{Records: records})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, im.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling import service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading import response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ImportError{URL: im.URL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result ImportResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding import response: %w", err)
	}
	if !result.Success {
		return &result, &ImportError{URL: im.URL, StatusCode: http.StatusOK, Body: string(body)}
	}
	return &result, nil
}
