package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentdev/toolwatch/internal/common/github"
)

func TestPyPIConnector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/crewai/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"info": {"name": "crewai", "version": "1.9.3"}}`))
	}))
	defer server.Close()

	connector := NewPyPIConnector("crewai", "crewai", NewClient())
	connector.SetBaseURL(server.URL)

	result, err := connector.FetchVersion(context.Background())
	if err != nil {
		t.Fatalf("FetchVersion failed: %v", err)
	}
	if result.Ecosystem != "pypi" || result.Name != "crewai" || result.Version != "1.9.3" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Identity() != "pypi/crewai" {
		t.Errorf("unexpected identity: %s", result.Identity())
	}
}

func TestPyPIConnectorMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info": {}}`))
	}))
	defer server.Close()

	connector := NewPyPIConnector("crewai", "crewai", NewClient())
	connector.SetBaseURL(server.URL)

	_, err := connector.FetchVersion(context.Background())
	if !errors.Is(err, ErrParseFailed) {
		t.Errorf("expected ErrParseFailed, got %v", err)
	}
}

func TestNPMConnector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dist-tags": {"latest": "2.1.0", "next": "3.0.0-beta.1"}}`))
	}))
	defer server.Close()

	connector := NewNPMConnector("claude-code", "@anthropic-ai/claude-code", NewClient())
	connector.SetBaseURL(server.URL)

	result, err := connector.FetchVersion(context.Background())
	if err != nil {
		t.Fatalf("FetchVersion failed: %v", err)
	}
	if result.Version != "2.1.0" {
		t.Errorf("expected latest dist-tag 2.1.0, got %s", result.Version)
	}
	if result.Ecosystem != "npm" {
		t.Errorf("expected npm ecosystem, got %s", result.Ecosystem)
	}
}

func TestGitHubReleaseConnector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/microsoft/autogen/releases/latest" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"tag_name": "v0.4.2"}`))
	}))
	defer server.Close()

	ghClient := github.NewClient()
	ghClient.BaseURL = server.URL

	connector, err := NewGitHubReleaseConnector("autogen", "microsoft/autogen", ghClient)
	if err != nil {
		t.Fatalf("NewGitHubReleaseConnector failed: %v", err)
	}

	result, err := connector.FetchVersion(context.Background())
	if err != nil {
		t.Fatalf("FetchVersion failed: %v", err)
	}
	if result.Version != "0.4.2" {
		t.Errorf("expected v-stripped 0.4.2, got %s", result.Version)
	}
}

func TestGitHubReleaseConnectorBadRepo(t *testing.T) {
	if _, err := NewGitHubReleaseConnector("x", "not-a-repo", github.NewClient()); err == nil {
		t.Error("expected error for malformed owner/repo")
	}
}

func TestCustomConnector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latest": {"version": "v7.7.7"}}`))
	}))
	defer server.Close()

	extractor, err := NewExtractor("json", "latest.version", "", "", "")
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	connector := NewCustomConnector("mytool", server.URL, extractor, NewClient())
	result, err := connector.FetchVersion(context.Background())
	if err != nil {
		t.Fatalf("FetchVersion failed: %v", err)
	}
	if result.Version != "7.7.7" {
		t.Errorf("expected v-stripped 7.7.7, got %s", result.Version)
	}
	if result.Ecosystem != "custom" {
		t.Errorf("expected custom ecosystem, got %s", result.Ecosystem)
	}
}

func TestConnectorDeadSourceReturnsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	connector := NewPyPIConnector("crewai", "crewai", NewClient())
	connector.SetBaseURL(server.URL)

	_, err := connector.FetchVersion(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed, got %v", err)
	}

	failure := NewFailure("crewai", err)
	if failure.Source != "crewai" {
		t.Errorf("unexpected failure source: %s", failure.Source)
	}
}
