package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/models"
)

// TelegramSource reads channel posts visible to the configured bot via the
// Bot API. The bot only sees channels it has been added to, so this source
// covers the groups the operator chose to watch rather than all of Telegram.
type TelegramSource struct {
	botToken string
	client   *resty.Client
}

type telegramUpdatesResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		UpdateID    int64            `json:"update_id"`
		ChannelPost *telegramMessage `json:"channel_post"`
		Message     *telegramMessage `json:"message"`
	} `json:"result"`
}

type telegramMessage struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
	Chat      struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Username string `json:"username"`
	} `json:"chat"`
	From *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"from"`
}

// NewTelegramSource creates a new Telegram source
func NewTelegramSource(botToken string) *TelegramSource {
	return &TelegramSource{
		botToken: botToken,
		client:   resty.New().SetTimeout(30 * time.Second),
	}
}

func (t *TelegramSource) GetName() string {
	return "telegram"
}

func (t *TelegramSource) IsEnabled() bool {
	return t.botToken != ""
}

func (t *TelegramSource) FetchPosts(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author, error) {
	if !t.IsEnabled() {
		logrus.Debug("Telegram source disabled - missing bot token")
		return nil, nil, nil
	}

	messages, err := t.fetchUpdates(ctx)
	if err != nil {
		return nil, nil, err
	}

	needle := strings.ToLower(symbol)
	authors := make(map[string]models.Author)
	var posts []models.Post

	for _, msg := range messages {
		if msg.Text == "" || !strings.Contains(strings.ToLower(msg.Text), needle) {
			continue
		}

		authorID := fmt.Sprintf("channel_%d", msg.Chat.ID)
		if msg.From != nil {
			if msg.From.Username != "" {
				authorID = msg.From.Username
			} else {
				authorID = fmt.Sprintf("user_%d", msg.From.ID)
			}
		}

		posts = append(posts, models.Post{
			ID:          fmt.Sprintf("telegram_%d_%d", msg.Chat.ID, msg.MessageID),
			Source:      "telegram",
			AuthorID:    authorID,
			Text:        msg.Text,
			URL:         fmt.Sprintf("https://t.me/%s/%d", msg.Chat.Username, msg.MessageID),
			CreatedAt:   time.Unix(msg.Date, 0).UTC(),
			TokenSymbol: symbol,
		})

		if _, seen := authors[authorID]; !seen {
			// The Bot API exposes no account age or history.
			authors[authorID] = models.Author{
				AuthorID:       authorID,
				Source:         "telegram",
				AccountAgeDays: -1,
			}
		}

		if len(posts) >= limit {
			break
		}
	}

	return posts, authors, nil
}

// FetchRecent is not supported: the Bot API has no global channel feed.
func (t *TelegramSource) FetchRecent(ctx context.Context, limit int) ([]models.Post, error) {
	return nil, nil
}

func (t *TelegramSource) fetchUpdates(ctx context.Context) ([]telegramMessage, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("allowed_updates", `["channel_post","message"]`).
		SetQueryParam("limit", "100").
		Get(fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates", t.botToken))

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("telegram API returned status %d", resp.StatusCode())
	}

	var updates telegramUpdatesResponse
	if err := json.Unmarshal(resp.Body(), &updates); err != nil {
		return nil, fmt.Errorf("failed to parse Telegram response: %w", err)
	}
	if !updates.OK {
		return nil, fmt.Errorf("telegram API reported failure")
	}

	var messages []telegramMessage
	for _, upd := range updates.Result {
		switch {
		case upd.ChannelPost != nil:
			messages = append(messages, *upd.ChannelPost)
		case upd.Message != nil:
			messages = append(messages, *upd.Message)
		}
	}
	return messages, nil
}
