// Package api uploads exported recordings to a viewer web frontend.
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rcviewer/rclog/pkg/core"
)

// Client handles communication with the viewer web frontend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadMetadata describes the recording being uploaded.
type UploadMetadata struct {
	Resource   string
	LeftTeam   string
	RightTeam  string
	GoalsLeft  int
	GoalsRight int
	Duration   float64
}

// MetadataFor derives upload metadata from a decoded log.
func MetadataFor(log *core.SimulationLog) UploadMetadata {
	final := log.FinalScore()
	return UploadMetadata{
		Resource:   log.Resource,
		LeftTeam:   log.LeftTeam.Name,
		RightTeam:  log.RightTeam.Name,
		GoalsLeft:  final.GoalsLeft,
		GoalsRight: final.GoalsRight,
		Duration:   log.Duration(),
	}
}

// Healthcheck checks if the viewer web frontend is reachable.
func (c *Client) Healthcheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthcheck")
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload sends an exported recording file to the viewer web frontend.
func (c *Client) Upload(filePath string, meta UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// Write form fields and file in goroutine
	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer writer.Close()

		_ = writer.WriteField("secret", c.apiKey)
		_ = writer.WriteField("filename", filepath.Base(filePath))
		_ = writer.WriteField("resource", meta.Resource)
		_ = writer.WriteField("leftTeam", meta.LeftTeam)
		_ = writer.WriteField("rightTeam", meta.RightTeam)
		_ = writer.WriteField("score", fmt.Sprintf("%d-%d", meta.GoalsLeft, meta.GoalsRight))
		_ = writer.WriteField("duration", fmt.Sprintf("%f", meta.Duration))

		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			errCh <- fmt.Errorf("failed to create form file: %w", err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("failed to copy file: %w", err)
			return
		}
		errCh <- nil
	}()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/recordings/add", pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return nil
}
