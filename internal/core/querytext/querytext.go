// Package querytext builds the similarity query for a commit event
package querytext

import (
	"strings"

	"contextual/internal/core/event"
)

const (
	// Fallback is used when the event carries no message, no files and no repo
	Fallback = "code change"

	// MaxJoined bounds the concatenation of per-commit messages, in runes
	MaxJoined = 500

	// MaxFiles bounds the file paths appended
	MaxFiles = 10
)

// Message resolves the text signal in order: commit_message, message,
// head_commit.message, then the commits[] messages joined with "; "
func Message(p event.Payload) string {
	if s := strings.TrimSpace(p.CommitMessage); s != "" {
		return p.CommitMessage
	}
	if s := strings.TrimSpace(p.Message); s != "" {
		return p.Message
	}
	if p.HeadCommit != nil && strings.TrimSpace(p.HeadCommit.Message) != "" {
		return p.HeadCommit.Message
	}
	var msgs []string
	for _, c := range p.Commits {
		if c.Message != "" {
			msgs = append(msgs, c.Message)
		}
	}
	return truncate(strings.Join(msgs, "; "), MaxJoined)
}

// Files returns payload.files, else head_commit added, modified and removed, capped at MaxFiles
func Files(p event.Payload) []string {
	files := p.Files
	if len(files) == 0 && p.HeadCommit != nil {
		hc := p.HeadCommit
		files = make([]string, 0, len(hc.Added)+len(hc.Modified)+len(hc.Removed))
		files = append(files, hc.Added...)
		files = append(files, hc.Modified...)
		files = append(files, hc.Removed...)
	}
	if len(files) > MaxFiles {
		files = files[:MaxFiles]
	}
	return files
}

// Build joins message, "files: a, b" and "repo:x" with newlines, skipping parts
// that are empty once cleaned
func Build(p event.Payload) string {
	var parts []string
	if msg := Clean(Message(p)); strings.TrimSpace(msg) != "" {
		parts = append(parts, msg)
	}
	if files := Files(p); len(files) > 0 {
		parts = append(parts, Clean("files: "+strings.Join(files, ", ")))
	}
	if repo := Clean(event.ResolveRepo(p)); repo != "" {
		parts = append(parts, "repo:"+repo)
	}
	if len(parts) == 0 {
		return Fallback
	}
	return strings.Join(parts, "\n")
}

// Preview returns at most n runes of s for log lines
func Preview(s string, n int) string { return truncate(s, n) }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
