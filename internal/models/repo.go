package models

import "strings"

// None is reported for branch and commit when the repository has no commits.
const None = "none"

// RepoState is the derived version-control state of the content root.
type RepoState struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
	Empty  bool   `json:"empty"`
}

// EmptyRepoState returns the state reported for a repository without commits.
func EmptyRepoState(dirty bool) RepoState {
	return RepoState{Branch: None, Commit: None, Dirty: dirty, Empty: true}
}

// SyncOutcome classifies the result of a pull or push.
type SyncOutcome string

// Sync outcomes.
const (
	OutcomeOK        SyncOutcome = "ok"
	OutcomeNoop      SyncOutcome = "noop"
	OutcomeNoRemote  SyncOutcome = "no_remote"
	OutcomeSyncError SyncOutcome = "sync_error"
)

// FetchFlag describes how a remote-tracking ref changed during a pull.
type FetchFlag int

// Fetch flags.
const (
	FetchNewTag FetchFlag = 1 << iota
	FetchNewHead
	FetchHeadUpToDate
	FetchTagUpdate
	FetchRejected
	FetchForcedUpdate
	FetchFastForward
	FetchError
)

var fetchFlagNames = []string{
	"new_tag", "new_head", "head_uptodate", "tag_update",
	"rejected", "forced_update", "fast_forward", "error",
}

func (f FetchFlag) String() string { return flagString(int(f), fetchFlagNames) }

// PushFlag describes how a remote ref changed during a push.
type PushFlag int

// Push flags.
const (
	PushNewTag PushFlag = 1 << iota
	PushNewHead
	PushNoMatch
	PushRejected
	PushRemoteRejected
	PushRemoteFailure
	PushDeleted
	PushForcedUpdate
	PushFastForward
	PushUpToDate
	PushError
)

var pushFlagNames = []string{
	"new_tag", "new_head", "no_match", "rejected", "remote_rejected",
	"remote_failure", "deleted", "forced_update", "fast_forward",
	"up_to_date", "error",
}

func (f PushFlag) String() string { return flagString(int(f), pushFlagNames) }

func flagString(v int, names []string) string {
	var parts []string
	for i, name := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// FetchEntry is the per-ref outcome of a pull.
type FetchEntry struct {
	Ref       string    `json:"ref"`
	Commit    string    `json:"commit"`
	OldCommit *string   `json:"old_commit"`
	Flags     FetchFlag `json:"flags"`
	Note      string    `json:"note"`
}

// PushEntry is the per-ref outcome of a push.
type PushEntry struct {
	Ref     string   `json:"ref"`
	Flags   PushFlag `json:"flags"`
	Summary string   `json:"summary"`
}

// PullResult is the structured outcome of a pull.
type PullResult struct {
	OK      bool         `json:"ok"`
	Outcome SyncOutcome  `json:"outcome"`
	Message string       `json:"message"`
	Entries []FetchEntry `json:"result,omitempty"`
}

// PushResult is the structured outcome of a commit-and-push cycle.
type PushResult struct {
	OK      bool        `json:"ok"`
	Outcome SyncOutcome `json:"outcome"`
	Message string      `json:"message"`
	Commit  string      `json:"commit,omitempty"`
	Pushed  bool        `json:"pushed"`
	Entries []PushEntry `json:"result,omitempty"`
}
