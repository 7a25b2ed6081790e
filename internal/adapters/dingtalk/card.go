// Package dingtalk composes, signs and delivers action-card messages to a DingTalk robot webhook
package dingtalk

import (
	"fmt"
	"strings"
)

const (
	titleNormal = "是否关联到该 Jira 任务？"
	titleLow    = "（低置信度）是否关联到该 Jira 任务？"

	btnConfirm = "✅ Yes, link it"
	btnNotSure = "❌ Not sure"

	// MaxButtons is the robot UI limit per card
	MaxButtons = 4

	// MaxListed is how many alternatives the body text names
	MaxListed = 3
)

// Candidate is an alternative issue and its similarity score
type Candidate struct {
	Key   string
	Score float64
}

// CardInput is one recommendation to present
type CardInput struct {
	TraceID string
	Commit  string
	Repo    string
	Top1    string
	// Score is nil when no similarity was computed
	Score *float64
	// Candidates may include Top1; it is skipped when listing alternatives
	Candidates []Candidate
}

// CardOptions carries the per-deployment rendering knobs
type CardOptions struct {
	// CallbackBase is the public base URL of the callback service
	CallbackBase string
	// Provider is the path segment under /callback, dingtalk when empty
	Provider string
	// Keyword is prefixed to the text for robots with a keyword guard
	Keyword string
	// WarnScore marks the title as low confidence below it
	WarnScore float64
}

// Button is one action of the card
type Button struct {
	Title     string `json:"title"`
	ActionURL string `json:"actionURL"`
}

// ActionCard is the actionCard block of the robot message
type ActionCard struct {
	Title          string   `json:"title"`
	Text           string   `json:"text"`
	Buttons        []Button `json:"btns"`
	BtnOrientation string   `json:"btnOrientation"`
}

// Message is the full robot request body
type Message struct {
	MsgType    string     `json:"msgtype"`
	ActionCard ActionCard `json:"actionCard"`
}

// Wrap returns the robot request body for c
func (c ActionCard) Wrap() Message { return Message{MsgType: "actionCard", ActionCard: c} }

// Alternatives returns the candidates other than top1, in order
func Alternatives(top1 string, cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Key == top1 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// BuildActionCard renders in into a card. Buttons are confirm, one per alternative,
// then not sure, never more than MaxButtons; extra alternatives stay in the text only
func BuildActionCard(in CardInput, opt CardOptions) ActionCard {
	title := titleNormal
	if in.Score != nil && *in.Score < opt.WarnScore {
		title = titleLow
	}

	guess := fmt.Sprintf("猜测的 Jira：**%s**", in.Top1)
	if in.Score != nil {
		guess += fmt.Sprintf("（置信度 %.2f）", *in.Score)
	}
	lines := []string{
		"**Contextual 推荐关联**",
		"仓库：" + in.Repo,
		"Commit：`" + in.Commit + "`",
		"",
		guess,
	}

	cb := callbackParams{
		base:     opt.CallbackBase,
		provider: opt.Provider,
		traceID:  in.TraceID,
		commit:   in.Commit,
		top1:     in.Top1,
	}
	btns := []Button{{Title: btnConfirm, ActionURL: cb.url(in.Top1, true)}}

	alts := Alternatives(in.Top1, in.Candidates)
	if len(alts) > 0 {
		lines = append(lines, "", "**其它候选：**")
	}
	for i, a := range alts {
		if i == MaxListed {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s（%.2f）", a.Key, a.Score))
		if len(btns) < MaxButtons-1 {
			btns = append(btns, Button{Title: "👉 " + a.Key, ActionURL: cb.url(a.Key, true)})
		}
	}
	btns = append(btns, Button{Title: btnNotSure, ActionURL: cb.url(in.Top1, false)})

	text := strings.Join(lines, "\n")
	if kw := strings.TrimSpace(opt.Keyword); kw != "" {
		text = kw + "\n\n" + text
	}
	return ActionCard{Title: title, Text: text, Buttons: btns, BtnOrientation: "0"}
}
