// Package fetcher downloads the blog's tweets from the search API.
//
// A run is two sequential stages: RequestToken exchanges the client
// credentials for a bearer token, and Search uses that token for one query.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"tweetfeed/internal/domain"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 32 << 20

// Options configure a Fetcher.
type Options struct {
	APIKey       string
	APISecretKey string

	TokenURL  string
	SearchURL string

	Query      string
	FromDate   string
	MaxResults int
}

// Token is the result of the credentials exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SearchResult is the decoded search response. Raw holds the results exactly
// as received so the snapshot keeps fields the normalizer does not read.
type SearchResult struct {
	Raw    []json.RawMessage
	Tweets []domain.RawTweet
	Next   string
}

// Fetcher runs the token exchange and search against the API.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    logrus.FieldLogger
}

// New creates a Fetcher. A nil client means http.DefaultClient.
func New(opts Options, client *http.Client, logger logrus.FieldLogger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		opts:   opts,
		client: client,
		log:    logger.WithField("component", "fetcher"),
	}
}

// FetchTweets requests a token and then runs the search with it.
func (f *Fetcher) FetchTweets(ctx context.Context) (SearchResult, error) {
	token, err := f.RequestToken(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	return f.Search(ctx, token)
}

// RequestToken performs the client credentials exchange.
func (f *Fetcher) RequestToken(ctx context.Context) (Token, error) {
	log := f.log.WithField("url", f.opts.TokenURL)
	log.Info("Requesting bearer token")

	body := strings.NewReader(url.Values{"grant_type": {"client_credentials"}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.opts.TokenURL, body)
	if err != nil {
		return Token{}, &AuthError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(f.opts.APIKey, f.opts.APISecretKey)

	status, data, err := f.do(req)
	if err != nil {
		log.WithError(err).Error("Token request failed")
		return Token{}, &AuthError{StatusCode: status, Err: err}
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, &AuthError{StatusCode: status, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if token.AccessToken == "" {
		return Token{}, &AuthError{StatusCode: status, Err: errors.New("response has no access_token")}
	}

	log.Info("Bearer token obtained")
	return token, nil
}

// Search runs the configured query with the given token.
func (f *Fetcher) Search(ctx context.Context, token Token) (SearchResult, error) {
	u, err := url.Parse(f.opts.SearchURL)
	if err != nil {
		return SearchResult{}, &QueryError{Err: fmt.Errorf("parse search url: %w", err)}
	}
	q := u.Query()
	q.Set("query", f.opts.Query)
	q.Set("fromDate", f.opts.FromDate)
	q.Set("maxResults", strconv.Itoa(f.opts.MaxResults))
	u.RawQuery = q.Encode()

	log := f.log.WithFields(logrus.Fields{
		"query":       f.opts.Query,
		"from_date":   f.opts.FromDate,
		"max_results": f.opts.MaxResults,
	})
	log.Info("Searching tweets")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return SearchResult{}, &QueryError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	status, data, err := f.do(req)
	if err != nil {
		log.WithError(err).Error("Search request failed")
		return SearchResult{}, &QueryError{StatusCode: status, Err: err}
	}

	result, err := decodeSearch(data)
	if err != nil {
		return SearchResult{}, &QueryError{StatusCode: status, Err: err}
	}

	log.WithField("result_count", len(result.Tweets)).Info("Search completed")
	return result, nil
}

// do sends req and returns the status and body. Non-2xx responses are errors.
func (f *Fetcher) do(req *http.Request) (int, []byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, apiError(data)
	}
	return resp.StatusCode, data, nil
}

func decodeSearch(data []byte) (SearchResult, error) {
	var raw struct {
		Results *[]json.RawMessage `json:"results"`
		Next    string             `json:"next"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}
	if raw.Results == nil {
		return SearchResult{}, errors.New("search response has no results array")
	}

	tweets := make([]domain.RawTweet, 0, len(*raw.Results))
	for i, r := range *raw.Results {
		var t domain.RawTweet
		if err := json.Unmarshal(r, &t); err != nil {
			return SearchResult{}, fmt.Errorf("decode result %d: %w", i, err)
		}
		tweets = append(tweets, t)
	}
	return SearchResult{Raw: *raw.Results, Tweets: tweets, Next: raw.Next}, nil
}
