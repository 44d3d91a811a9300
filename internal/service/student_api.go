package service

import (
	"assessment_results_backend/internal/config"
	"assessment_results_backend/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// StudentAPIClient talks to the student registry over HTTP.
type StudentAPIClient struct {
	baseURL string
	client  *http.Client
}

func NewStudentAPIClient(cfg config.StudentAPIConfig) *StudentAPIClient {
	return &StudentAPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *StudentAPIClient) ResolveStudentByPEN(ctx context.Context, pen string) (*StudentRecord, error) {
	var rec StudentRecord
	err := c.get(ctx, "/students/pen/"+url.PathEscape(pen), &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *StudentAPIClient) ResolveMergeTarget(ctx context.Context, studentID string) (*StudentRecord, error) {
	var rec StudentRecord
	err := c.get(ctx, "/students/"+url.PathEscape(studentID)+"/merge-target", &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *StudentAPIClient) CurrentSchoolOfRecord(ctx context.Context, studentID string) (*SchoolOfRecord, error) {
	var school SchoolOfRecord
	err := c.get(ctx, "/students/"+url.PathEscape(studentID)+"/school-of-record", &school)
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (c *StudentAPIClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("student api %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return util.ErrPenNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("student api %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
