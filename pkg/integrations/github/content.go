package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// FetchFile retrieves a file from the default branch of a repository,
// decoded from the contents API's base64 encoding.
func (c *Client) FetchFile(ctx context.Context, owner, repo, path string) (*FileContent, error) {
	var data contentResponse
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, path)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	return decodeContent(data)
}

// FetchReadme retrieves the repository README regardless of its file name.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) (*FileContent, error) {
	var data contentResponse
	url := fmt.Sprintf("%s/repos/%s/%s/readme", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}
	return decodeContent(data)
}

func decodeContent(data contentResponse) (*FileContent, error) {
	content := data.Content
	if data.Encoding == "base64" {
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
		content = string(raw)
	}
	return &FileContent{Path: data.Path, Size: data.Size, Content: content}, nil
}

// manifestDependencies extracts runtime dependencies from a package.json body.
func manifestDependencies(body string) (map[string]string, error) {
	var manifest struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(body), &manifest); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}
	if manifest.Dependencies == nil {
		return map[string]string{}, nil
	}
	return manifest.Dependencies, nil
}
