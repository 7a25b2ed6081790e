// Package github models the push webhook payload and verifies its signature
package github

// SignatureHeader carries the hex HMAC-SHA256 of the raw body
const SignatureHeader = "X-Hub-Signature-256"

// EventHeader names the webhook event type
const EventHeader = "X-GitHub-Event"

// PushEvent is the subset of a push payload the ingestor reads
// Unknown fields are ignored; every field is optional on the wire
type PushEvent struct {
	Ref        string      `json:"ref"`
	Before     string      `json:"before"`
	After      string      `json:"after"`
	Repository *Repository `json:"repository"`
	Pusher     *Person     `json:"pusher"`
	HeadCommit *Commit     `json:"head_commit"`
	Commits    []Commit    `json:"commits" validate:"dive"`
}

// Repository is the repository block of a push
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// Person is an author, committer or pusher
type Person struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Commit is one entry of commits[] or head_commit
type Commit struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	URL       string   `json:"url"`
	Author    *Person  `json:"author"`
	Added     []string `json:"added"`
	Modified  []string `json:"modified"`
	Removed   []string `json:"removed"`
}

// RepoName returns repository.full_name, or def when absent
func (p PushEvent) RepoName(def string) string {
	if p.Repository != nil && p.Repository.FullName != "" {
		return p.Repository.FullName
	}
	return def
}

// AuthorEmail returns author.email, "" when absent
func (c Commit) AuthorEmail() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Email
}

// FilesChanged counts added, modified and removed paths
func (c Commit) FilesChanged() int { return len(c.Added) + len(c.Modified) + len(c.Removed) }

// Files lists up to max paths: added, then modified, then removed
func (c Commit) Files(max int) []string {
	out := make([]string, 0, min(max, c.FilesChanged()))
	for _, group := range [][]string{c.Added, c.Modified, c.Removed} {
		for _, f := range group {
			if len(out) == max {
				return out
			}
			out = append(out, f)
		}
	}
	return out
}
