package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// getJSON handles GET requests and decodes the response
func getJSON(ctx context.Context, client *http.Client, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("request creation error: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyDump, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyDump))
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
