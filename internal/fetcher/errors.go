package fetcher

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthError means the client credentials exchange failed or returned an
// unusable token.
type AuthError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError means the search request failed or returned a malformed body.
type QueryError struct {
	StatusCode int
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search query failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IOError means the snapshot file could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing snapshot %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// apiError extracts the messages of a Twitter error body, e.g.
// {"errors":[{"code":99,"message":"Unable to verify your credentials"}]}.
// It falls back to the trimmed raw body.
func apiError(body []byte) error {
	var errResp struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if len(errResp.Errors) > 0 {
			msgs := make([]string, 0, len(errResp.Errors))
			for _, e := range errResp.Errors {
				msgs = append(msgs, fmt.Sprintf("%s (code %d)", e.Message, e.Code))
			}
			return fmt.Errorf("twitter API error: %s", strings.Join(msgs, "; "))
		}
		if errResp.Error != "" {
			return fmt.Errorf("twitter API error: %s", errResp.Error)
		}
	}

	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty response body"
	}
	return fmt.Errorf("unexpected response: %s", s)
}
