package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ThomasCrouzet/fleetmon/internal/model"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultSearchQuery    = "role:*"
	defaultSearchPageSize = 1000
	defaultSearchTimeout  = 30 * time.Second
	defaultSearchAttempts = 3
	defaultSearchDelay    = time.Second
)

func init() {
	Register(func() RegisteredCollector { return &SearchCollector{} })
}

// SearchCollector queries a node directory over HTTP for every node that
// has a role, paging through the results.
type SearchCollector struct {
	URL        string
	Query      string
	Token      string
	PageSize   int
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
	// TestFile bypasses HTTP and reads a single search response from disk.
	TestFile string

	client *http.Client
}

func (sc *SearchCollector) Metadata() CollectorMetadata {
	return CollectorMetadata{
		Name:        "search",
		DisplayName: "Directory Search",
		Description: "Searches the node directory for every node with a role assigned",
		ConfigKey:   "search",
		DetectHint:  "",
	}
}

func (sc *SearchCollector) Enabled(sources map[string]any) bool {
	section, ok := sources["search"].(map[string]any)
	if !ok {
		return false
	}
	u, _ := section["url"].(string)
	return u != ""
}

func (sc *SearchCollector) Configure(section map[string]any) error {
	if section != nil {
		if v, ok := section["url"].(string); ok {
			sc.URL = strings.TrimRight(v, "/")
		}
		if v, ok := section["query"].(string); ok {
			sc.Query = v
		}
		if v, ok := section["token"].(string); ok {
			sc.Token = v
		}
		if v, ok := section["test_file"].(string); ok {
			sc.TestFile = v
		}
		if v, ok := section["page_size"]; ok {
			sc.PageSize = toInt(v)
		}
		if v, ok := section["attempts"]; ok {
			sc.Attempts = uint(toInt(v))
		}
		if v, ok := section["timeout"]; ok {
			d, err := toDuration(v)
			if err != nil {
				return fmt.Errorf("timeout: %w", err)
			}
			sc.Timeout = d
		}
		if v, ok := section["retry_delay"]; ok {
			d, err := toDuration(v)
			if err != nil {
				return fmt.Errorf("retry_delay: %w", err)
			}
			sc.RetryDelay = d
		}
	}
	if sc.Token == "" {
		sc.Token = os.Getenv("FLEETMON_SEARCH_TOKEN")
	}
	sc.setDefaults()
	return nil
}

func (sc *SearchCollector) setDefaults() {
	if sc.Query == "" {
		sc.Query = defaultSearchQuery
	}
	if sc.PageSize <= 0 {
		sc.PageSize = defaultSearchPageSize
	}
	if sc.Timeout <= 0 {
		sc.Timeout = defaultSearchTimeout
	}
	if sc.Attempts == 0 {
		sc.Attempts = defaultSearchAttempts
	}
	if sc.RetryDelay <= 0 {
		sc.RetryDelay = defaultSearchDelay
	}
}

func (sc *SearchCollector) Validate() []ValidationError {
	var errs []ValidationError
	if sc.URL == "" {
		errs = append(errs, ValidationError{
			Field:      "sources.search.url",
			Message:    "url is required",
			Suggestion: "set the base URL of the node directory, e.g. https://chef.internal/organizations/ops",
		})
	} else if u, err := url.Parse(sc.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:      "sources.search.url",
			Message:    fmt.Sprintf("invalid URL: %s", sc.URL),
			Suggestion: "use an absolute http:// or https:// URL",
		})
	}
	if sc.TestFile != "" {
		if _, err := os.Stat(sc.TestFile); err != nil {
			errs = append(errs, ValidationError{
				Field:   "sources.search.test_file",
				Message: fmt.Sprintf("file not found: %s", sc.TestFile),
			})
		}
	}
	return errs
}

// searchResponse is one page of directory search results.
type searchResponse struct {
	Total int             `json:"total"`
	Start int             `json:"start"`
	Rows  []DirectoryNode `json:"rows"`
}

func (sc *SearchCollector) Collect(ctx context.Context) ([]model.InstanceRecord, error) {
	sc.setDefaults()

	nodes, err := sc.search(ctx)
	if err != nil {
		return nil, err
	}
	return FromDirectoryQuery(nodes), nil
}

func (sc *SearchCollector) search(ctx context.Context) ([]DirectoryNode, error) {
	if sc.TestFile != "" {
		data, err := os.ReadFile(sc.TestFile)
		if err != nil {
			return nil, err
		}
		var page searchResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("parsing search response: %w", err)
		}
		return withRoles(page.Rows), nil
	}

	var nodes []DirectoryNode
	for start := 0; ; {
		page, err := sc.fetchPage(ctx, start)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, withRoles(page.Rows)...)
		start += len(page.Rows)

		if len(page.Rows) == 0 || start >= page.Total {
			break
		}
	}
	return nodes, nil
}

// withRoles drops rows without a role; the query may match bare registrations.
func withRoles(rows []DirectoryNode) []DirectoryNode {
	out := make([]DirectoryNode, 0, len(rows))
	for _, n := range rows {
		if !n.HasRole() {
			log.Debug().Str("host", n.Hostname).Msg("skipping node without roles")
			continue
		}
		out = append(out, n)
	}
	return out
}

func (sc *SearchCollector) fetchPage(ctx context.Context, start int) (*searchResponse, error) {
	params := url.Values{}
	params.Set("q", sc.Query)
	params.Set("start", strconv.Itoa(start))
	params.Set("rows", strconv.Itoa(sc.PageSize))
	endpoint := sc.URL + "/search/node?" + params.Encode()

	var page searchResponse
	err := retry.Do(
		func() error {
			body, err := sc.apiRequest(ctx, endpoint)
			if err != nil {
				return err
			}
			page = searchResponse{}
			if err := json.Unmarshal(body, &page); err != nil {
				return retry.Unrecoverable(fmt.Errorf("parsing search response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(sc.Attempts),
		retry.Delay(sc.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Int("start", start).Msg("directory search failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (sc *SearchCollector) httpClient() *http.Client {
	if sc.client == nil {
		sc.client = &http.Client{Timeout: sc.Timeout}
	}
	return sc.client
}

func (sc *SearchCollector) apiRequest(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	if sc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sc.Token)
	}

	resp, err := sc.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &apiStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Unrecoverable(apiErr)
		}
		return nil, apiErr
	}

	return body, nil
}

// apiStatusError is a non-200 answer from the directory.
type apiStatusError struct {
	Code int
	Body string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("directory search returned %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a directory answer with the given code.
func IsStatus(err error, code int) bool {
	var apiErr *apiStatusError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
