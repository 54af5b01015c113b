// Package judge talks to the Codeforces public API: user lookups and the
// submissions feed used to reconcile solved problems.
package judge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cp_tracker/internal/domain/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL         = "https://codeforces.com/api"
	DefaultMinInterval     = 200 * time.Millisecond
	DefaultTimeout         = 10 * time.Second
	DefaultSubmissionCount = 100
	AcceptedFetchCount     = 1000

	VerdictOK = "OK"
	statusOK  = "OK"
)

// ErrAPI covers every way a call can fail to produce data: transport errors,
// non-2xx answers, malformed bodies and non-OK envelopes.
var ErrAPI = errors.New("codeforces api error")

type UserInfo struct {
	Handle    string `json:"handle"`
	Rating    *int   `json:"rating,omitempty"`
	MaxRating *int   `json:"maxRating,omitempty"`
	Rank      string `json:"rank,omitempty"`
	MaxRank   string `json:"maxRank,omitempty"`
}

type Problem struct {
	ContestID int     `json:"contestId"`
	Index     string  `json:"index"`
	Name      string  `json:"name"`
	Rating    int     `json:"rating,omitempty"`
	Points    float64 `json:"points,omitempty"`
}

type Submission struct {
	ID                  int64   `json:"id"`
	ContestID           int     `json:"contestId"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	Problem             Problem `json:"problem"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	Verdict             string  `json:"verdict"`
}

type envelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
	Result  T      `json:"result"`
}

type Client struct {
	http    *resty.Client
	limiter *Limiter
	log     *zap.Logger
}

func NewClient(baseURL string, timeout, minInterval time.Duration, log *zap.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		limiter: NewLimiter(minInterval),
		log:     log,
	}
}

func get[T any](ctx context.Context, c *Client, path string, params map[string]string) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("%s: waiting for rate limiter: %w", path, err)
	}

	var ok envelope[T]
	var failed envelope[any]
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		ForceContentType("application/json").
		SetResult(&ok).
		SetError(&failed).
		Get(path)
	if err != nil {
		return zero, fmt.Errorf("%s: %v: %w", path, err, ErrAPI)
	}
	if resp.IsError() {
		return zero, fmt.Errorf("%s: http %d %s: %w", path, resp.StatusCode(), failed.Comment, ErrAPI)
	}
	if ok.Status != statusOK {
		return zero, fmt.Errorf("%s: status %q %s: %w", path, ok.Status, ok.Comment, ErrAPI)
	}
	return ok.Result, nil
}

// GetUserInfo looks up a single handle.
func (c *Client) GetUserInfo(ctx context.Context, handle string) (*UserInfo, error) {
	users, err := get[[]UserInfo](ctx, c, "/user.info", map[string]string{"handles": handle})
	if err != nil {
		c.log.Warn("codeforces user.info failed", zap.String("handle", handle), zap.Error(err))
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("/user.info: empty result for %q: %w", handle, ErrAPI)
	}
	return &users[0], nil
}

// GetUserSubmissions returns up to count of the handle's most recent submissions.
func (c *Client) GetUserSubmissions(ctx context.Context, handle string, count int) ([]Submission, error) {
	if count <= 0 {
		count = DefaultSubmissionCount
	}
	subs, err := get[[]Submission](ctx, c, "/user.status", map[string]string{
		"handle": handle,
		"from":   "1",
		"count":  strconv.Itoa(count),
	})
	if err != nil {
		c.log.Warn("codeforces user.status failed", zap.String("handle", handle), zap.Error(err))
		return nil, err
	}
	return subs, nil
}

// GetAcceptedProblems returns the distinct (contest, index) keys of the
// handle's accepted submissions among its last AcceptedFetchCount.
func (c *Client) GetAcceptedProblems(ctx context.Context, handle string) (map[model.ProblemKey]struct{}, error) {
	subs, err := c.GetUserSubmissions(ctx, handle, AcceptedFetchCount)
	if err != nil {
		return nil, err
	}
	return AcceptedKeys(subs), nil
}

// AcceptedKeys keeps verdict OK entries that carry both a contest id and an index.
func AcceptedKeys(subs []Submission) map[model.ProblemKey]struct{} {
	accepted := make(map[model.ProblemKey]struct{})
	for _, s := range subs {
		if s.Verdict != VerdictOK {
			continue
		}
		if s.Problem.ContestID == 0 || s.Problem.Index == "" {
			continue
		}
		accepted[model.ProblemKey{ContestID: s.Problem.ContestID, Index: s.Problem.Index}] = struct{}{}
	}
	return accepted
}

// ValidateHandle reports whether handle exists, with a short rating summary.
func (c *Client) ValidateHandle(ctx context.Context, handle string) (bool, string) {
	info, err := c.GetUserInfo(ctx, handle)
	if err != nil {
		return false, "Handle not found on Codeforces."
	}

	rating := "Unrated"
	if info.Rating != nil {
		rating = strconv.Itoa(*info.Rating)
	}
	rank := info.Rank
	if rank == "" {
		rank = "unknown"
	}
	return true, fmt.Sprintf("Found: %s (Rating: %s, Rank: %s)", handle, rating, rank)
}
