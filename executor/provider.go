package executor

import (
	"bytes"
	"code-lab/contract"
	"code-lab/domain"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPProvider talks to the remote execution service over its JSON API.
// The call duration is bounded by the context the gateway supplies.
type HTTPProvider struct {
	client *http.Client
	url    string
	token  string
}

var _ contract.Executor = (*HTTPProvider)(nil)

func NewHTTPProvider(url, token string) *HTTPProvider {
	return &HTTPProvider{
		client: &http.Client{},
		url:    url,
		token:  token,
	}
}

type executeRequest struct {
	Script   string `json:"script"`
	Language string `json:"language"`
	Version  string `json:"versionIndex"`
}

// executeResponse mirrors the provider's wire shape. Any of the three
// text fields may be omitted depending on how the run ended.
type executeResponse struct {
	Success       bool   `json:"success"`
	CompileOutput string `json:"compile_output"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
}

func (p *HTTPProvider) Execute(ctx context.Context, source string, target domain.ExecTarget) (domain.RunResult, error) {
	body, err := json.Marshal(executeRequest{
		Script:   source,
		Language: target.Language,
		Version:  target.Version,
	})
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("encoding execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return domain.RunResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.RunResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RunResult{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var decoded executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RunResult{}, fmt.Errorf("decoding execute response: %w", err)
	}

	return domain.RunResult{
		Succeeded:   decoded.Success,
		Diagnostics: decoded.CompileOutput,
		Output:      decoded.Stdout,
		ErrorText:   decoded.Stderr,
	}, nil
}
