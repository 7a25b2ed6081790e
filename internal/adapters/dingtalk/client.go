package dingtalk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"contextual/internal/platform/config"
	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"

	"golang.org/x/time/rate"
)

// Config holds robot settings
type Config struct {
	WebhookURL string
	Secret     string
	Timeout    time.Duration
	// PerMinute caps sends; robots reject more than 20 a minute
	PerMinute int
}

// FromConf reads DINGTALK_* style keys from an already prefixed view
func FromConf(c config.Conf) Config {
	return Config{
		WebhookURL: c.MayString("WEBHOOK_URL", ""),
		Secret:     c.MayString("SECRET", ""),
		Timeout:    c.MayDuration("TIMEOUT", 10*time.Second),
		PerMinute:  c.MayInt("PER_MINUTE", 20),
	}
}

// Sender delivers a card
type Sender interface {
	Send(ctx context.Context, card ActionCard) error
}

// Client posts cards to the robot webhook
type Client struct {
	cfg  Config
	http *http.Client
	lim  *rate.Limiter
	now  func() time.Time
	log  *logger.Logger
}

// robotResponse is the robot's JSON answer
type robotResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// NewClient builds a client; an empty webhook url is rejected
func NewClient(cfg Config) (*Client, error) {
	if cfg.WebhookURL == "" {
		return nil, perr.InvalidArgf("dingtalk webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.PerMinute > 0 {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), cfg.PerMinute)
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		lim:  lim,
		now:  time.Now,
		log:  logger.Named("dingtalk"),
	}, nil
}

// Send waits for a rate slot and posts card. Transport failures, non-2xx answers and
// a non-zero errcode are upstream errors
func (c *Client) Send(ctx context.Context, card ActionCard) error {
	if err := c.lim.Wait(ctx); err != nil {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeUpstream, "dingtalk rate wait"), "dingtalk.send")
	}

	body, err := json.Marshal(card.Wrap())
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "dingtalk encode")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, SignURL(c.cfg.WebhookURL, c.cfg.Secret, c.now()), bytes.NewReader(body))
	if err != nil {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeUpstream, "dingtalk request"), "dingtalk.send")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.WithOp(perr.Wrap(err, perr.ErrorCodeUpstream, "dingtalk post"), "dingtalk.send")
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	lg := logger.From(ctx, c.log)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lg.Warn().Int("status", resp.StatusCode).Bytes("body", raw).Msg("dingtalk non-2xx")
		return perr.WithOp(perr.Upstreamf("dingtalk status %d", resp.StatusCode), "dingtalk.send")
	}

	var rr robotResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		// a 2xx without a JSON errcode carries no rejection
		if err := json.Unmarshal(raw, &rr); err != nil {
			lg.Warn().Bytes("body", raw).Msg("dingtalk answer not json")
		}
	}
	if rr.ErrCode != 0 {
		lg.Warn().Int("errcode", rr.ErrCode).Str("errmsg", rr.ErrMsg).Msg("dingtalk rejected card")
		return perr.WithOp(perr.Upstreamf("dingtalk errcode %d: %s", rr.ErrCode, rr.ErrMsg), "dingtalk.send")
	}
	lg.Debug().Int("status", resp.StatusCode).Str("title", card.Title).Msg("dingtalk sent")
	return nil
}
