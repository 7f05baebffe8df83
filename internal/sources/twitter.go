package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/models"
)

// TwitterSource implements the Twitter/X API source
type TwitterSource struct {
	bearerToken string
	client      *resty.Client
}

type twitterSearchResponse struct {
	Data     []twitterTweet `json:"data"`
	Includes struct {
		Users []twitterUser `json:"users"`
	} `json:"includes"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

type twitterUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
		TweetCount     int `json:"tweet_count"`
	} `json:"public_metrics"`
}

// NewTwitterSource creates a new Twitter source
func NewTwitterSource(bearerToken string) *TwitterSource {
	return &TwitterSource{
		bearerToken: bearerToken,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "TruthFi/1.0"),
	}
}

func (t *TwitterSource) GetName() string {
	return "twitter"
}

func (t *TwitterSource) IsEnabled() bool {
	return t.bearerToken != ""
}

func (t *TwitterSource) FetchPosts(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author, error) {
	if !t.IsEnabled() {
		logrus.Debug("Twitter source disabled - missing bearer token")
		return nil, nil, nil
	}

	// Cashtag search keeps results on-topic; -is:retweet avoids duplicates.
	query := fmt.Sprintf(`($%s OR #%s) -is:retweet lang:en`, symbol, symbol)
	maxResults := limit
	if maxResults > 100 {
		maxResults = 100
	}
	if maxResults < 10 {
		maxResults = 10
	}

	searchURL := fmt.Sprintf(
		"https://api.twitter.com/2/tweets/search/recent?query=%s&max_results=%d"+
			"&tweet.fields=created_at,author_id,public_metrics,referenced_tweets"+
			"&expansions=author_id&user.fields=created_at,public_metrics",
		url.QueryEscape(query), maxResults)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.bearerToken).
		Get(searchURL)

	if err != nil {
		return nil, nil, err
	}

	// Rate limit: return empty instead of blocking the other sources.
	if resp.StatusCode() == 429 {
		logrus.Warnf("Twitter API rate limit hit for symbol %s - proceeding without Twitter posts", symbol)
		return nil, nil, nil
	}

	if resp.StatusCode() != 200 {
		return nil, nil, fmt.Errorf("twitter API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Twitter response: %w", err)
	}

	authors := make(map[string]models.Author)
	for _, user := range searchResp.Includes.Users {
		author := models.Author{
			AuthorID:       user.ID,
			Source:         "twitter",
			AccountAgeDays: -1,
		}
		if created, err := time.Parse(time.RFC3339, user.CreatedAt); err == nil {
			author.AccountAgeDays = int(time.Since(created).Hours() / 24)
		}
		followers := float64(user.PublicMetrics.FollowersCount)
		author.Reputation = followers / (followers + 1000)
		author.PostHistoryCount = user.PublicMetrics.TweetCount
		authors[user.ID] = author
	}

	var posts []models.Post
	for _, tweet := range searchResp.Data {
		if t.isRetweet(tweet) {
			continue
		}

		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			logrus.Errorf("Failed to parse Twitter timestamp: %v", err)
			continue
		}

		posts = append(posts, models.Post{
			ID:           fmt.Sprintf("twitter_%s", tweet.ID),
			Source:       "twitter",
			AuthorID:     tweet.AuthorID,
			Text:         tweet.Text,
			URL:          fmt.Sprintf("https://twitter.com/i/status/%s", tweet.ID),
			CreatedAt:    createdAt.UTC(),
			Score:        tweet.PublicMetrics.LikeCount,
			CommentCount: tweet.PublicMetrics.ReplyCount,
			TokenSymbol:  symbol,
		})
		if len(posts) >= limit {
			break
		}
	}

	return posts, authors, nil
}

// FetchRecent is not supported for Twitter: the recent-search endpoint
// requires a query and the volume endpoints need elevated access.
func (t *TwitterSource) FetchRecent(ctx context.Context, limit int) ([]models.Post, error) {
	return nil, nil
}

func (t *TwitterSource) isRetweet(tweet twitterTweet) bool {
	for _, ref := range tweet.ReferencedTweets {
		if ref.Type == "retweeted" {
			return true
		}
	}
	return false
}
