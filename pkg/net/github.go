package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/go-github/v83/github"
)

// FetchGitHubFile downloads one file from a GitHub repository using the
// contents API. ref may be empty for the default branch. The client
// should come from GetOAuthClient for private repositories; pass nil for
// anonymous access to public ones.
func FetchGitHubFile(ctx context.Context, client *http.Client, owner, repo, path, ref string) ([]byte, error) {
	if owner == "" || repo == "" || path == "" {
		return nil, errors.New("owner, repo, and path are required")
	}

	opts := &github.RepositoryContentGetOptions{Ref: ref}
	rc, resp, err := github.NewClient(client).Repositories.DownloadContents(ctx, owner, repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s/%s: %w", owner, repo, path, ErrURLNotFound)
		}
		return nil, fmt.Errorf("failed to download %s from %s/%s: %w", path, owner, repo, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading %s content: %w", path, err)
	}
	return b, nil
}
