package dingtalk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CallbackParams is what every action URL encodes
type CallbackParams struct {
	TraceID  string
	Commit   string
	Jira     string // legacy single key, same as Selected
	Feedback bool
	Top1     string
	Selected string
}

// CallbackURL returns base/callback/<provider>?trace_id=..&commit=..&jira=..&feedback=..&top1=..&selected=..
func CallbackURL(base, provider string, p CallbackParams) string {
	if provider == "" {
		provider = "dingtalk"
	}
	q := url.Values{}
	q.Set("trace_id", p.TraceID)
	q.Set("commit", p.Commit)
	q.Set("jira", p.Jira)
	q.Set("feedback", strconv.FormatBool(p.Feedback))
	q.Set("top1", p.Top1)
	q.Set("selected", p.Selected)
	return strings.TrimSuffix(base, "/") + "/callback/" + url.PathEscape(provider) + "?" + q.Encode()
}

type callbackParams struct {
	base, provider, traceID, commit, top1 string
}

// url builds the action for key; feedback=false always targets top1
func (c callbackParams) url(key string, feedback bool) string {
	return CallbackURL(c.base, c.provider, CallbackParams{
		TraceID:  c.traceID,
		Commit:   c.commit,
		Jira:     key,
		Feedback: feedback,
		Top1:     c.top1,
		Selected: key,
	})
}

// Signature returns the url-escaped base64 HMAC-SHA256 of "<ts>\n<secret>" keyed by secret
func Signature(ts int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "\n" + secret))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// SignURL appends timestamp and sign to raw. raw is returned as is when secret is empty
// or it already carries a signature
func SignURL(raw, secret string, now time.Time) string {
	if secret == "" || strings.Contains(raw, "sign=") {
		return raw
	}
	ts := now.UnixMilli()
	sep := "&"
	if !strings.Contains(raw, "?") {
		sep = "?"
	}
	return raw + sep + "timestamp=" + strconv.FormatInt(ts, 10) + "&sign=" + Signature(ts, secret)
}
