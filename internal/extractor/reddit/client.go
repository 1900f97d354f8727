package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/metrics"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

var _ repository.Extractor = (*Client)(nil)

const (
	DefaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL  = "https://oauth.reddit.com"

	postTextWidth    = 100
	commentTextWidth = 200

	// progress band owned by extraction
	progressStart = 10
	progressEnd   = 40
)

// ErrAuth is returned when the app-only OAuth token cannot be obtained.
var ErrAuth = errors.New("reddit: authentication failed")

// Config holds the Reddit API credentials and pacing.
type Config struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	AuthURL           string
	APIURL            string
	PostLimit         int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client extracts new posts and their top-level comments through the Reddit API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Reddit extractor. Zero-valued config fields fall back to defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 20
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "leadly/1.0"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:  logger,
	}
}

// Extract walks sources in order. Failures on a single subreddit or post are
// logged and skipped; only authentication and cancellation abort the run.
func (c *Client) Extract(ctx context.Context, sources []string, progress repository.ProgressReporter) ([]domain.Post, []domain.Comment, error) {
	if _, err := c.accessToken(ctx); err != nil {
		return nil, nil, err
	}

	var posts []domain.Post
	var comments []domain.Comment

	for i, source := range sources {
		c.logger.Info("Processing subreddit",
			zap.String("subreddit", source),
			zap.Int("index", i+1),
			zap.Int("total", len(sources)),
		)

		sourcePosts, err := c.newPosts(ctx, source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			if errors.Is(err, ErrAuth) {
				return nil, nil, err
			}
			metrics.RedditRequestErrors.WithLabelValues("listing").Inc()
			c.logger.Warn("Failed to list subreddit, skipping", zap.String("subreddit", source), zap.Error(err))
			c.reportProgress(progress, i+1, len(sources))
			continue
		}
		posts = append(posts, sourcePosts...)

		for _, p := range sourcePosts {
			postComments, err := c.topLevelComments(ctx, source, p.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				if errors.Is(err, ErrAuth) {
					return nil, nil, err
				}
				metrics.RedditRequestErrors.WithLabelValues("comments").Inc()
				c.logger.Warn("Failed to fetch comments, skipping post",
					zap.String("subreddit", source),
					zap.String("post_id", p.ID),
					zap.Error(err),
				)
				continue
			}
			comments = append(comments, postComments...)
		}

		c.reportProgress(progress, i+1, len(sources))
	}

	c.logger.Info("Extraction finished", zap.Int("posts", len(posts)), zap.Int("comments", len(comments)))
	return posts, comments, nil
}

func (c *Client) reportProgress(progress repository.ProgressReporter, done, total int) {
	if progress == nil || total == 0 {
		return
	}
	progress.UpdateProgress(progressStart + (progressEnd-progressStart)*done/total)
}

func (c *Client) newPosts(ctx context.Context, source string) ([]domain.Post, error) {
	path := fmt.Sprintf("/r/%s/new?limit=%d&raw_json=1", url.PathEscape(source), c.cfg.PostLimit)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("reddit: listing for %s is not valid JSON", source)
	}

	var posts []domain.Post
	gjson.GetBytes(body, "data.children").ForEach(func(_, child gjson.Result) bool {
		data := child.Get("data")
		id := data.Get("id").String()
		if id == "" {
			return true
		}
		posts = append(posts, domain.Post{
			ID:        id,
			Title:     data.Get("title").String(),
			Text:      Shorten(data.Get("selftext").String(), postTextWidth),
			URL:       data.Get("url").String(),
			Subreddit: source,
		})
		return true
	})
	return posts, nil
}

func (c *Client) topLevelComments(ctx context.Context, source, postID string) ([]domain.Comment, error) {
	path := fmt.Sprintf("/comments/%s?depth=1&raw_json=1", url.PathEscape(postID))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("reddit: comments for %s are not valid JSON", postID)
	}

	var comments []domain.Comment
	// element 0 is the submission itself, element 1 the comment forest
	gjson.GetBytes(body, "1.data.children").ForEach(func(_, child gjson.Result) bool {
		if child.Get("kind").String() != "t1" {
			return true // "more" stubs
		}
		data := child.Get("data")
		id := data.Get("id").String()
		if id == "" {
			return true
		}
		comments = append(comments, domain.Comment{
			ID:        id,
			PostID:    postID,
			Text:      Shorten(data.Get("body").String(), commentTextWidth),
			Subreddit: source,
		})
		return true
	})
	return comments, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
		return nil, fmt.Errorf("reddit: GET %s: status %d", path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit: GET %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reddit: read %s: %w", path, err)
	}
	return body, nil
}

// accessToken returns the cached app-only token, fetching a new one when expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response: %v", ErrAuth, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrAuth, gjson.GetBytes(body, "error").String())
	}
	expiresIn := gjson.GetBytes(body, "expires_in").Int()
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.token = token
	c.tokenExpiry = tokenDeadline(time.Now(), time.Duration(expiresIn)*time.Second)
	c.logger.Debug("Obtained Reddit access token", zap.Int64("expires_in", expiresIn))
	return c.token, nil
}

// tokenDeadline refreshes a minute early, or halfway through lifetimes
// shorter than two minutes.
func tokenDeadline(now time.Time, lifetime time.Duration) time.Time {
	return now.Add(lifetime - min(time.Minute, lifetime/2))
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
