package archive

// Build is one canonical job record from an archive partition.
type Build struct {
	BuilderID   int64      `json:"builder_id"`
	StartTime   int64      `json:"starttime"`
	EndTime     int64      `json:"endtime"`
	RequestTime int64      `json:"requesttime"`
	Result      int        `json:"result"`
	SlaveID     int64      `json:"slave_id"`
	RequestIDs  []int64    `json:"request_ids"`
	Properties  Properties `json:"properties"`
}

// Properties carries the scheduler-reported metadata of a Build.
type Properties struct {
	BuilderName string  `json:"buildername"`
	BuildID     string  `json:"buildid"`
	LogURL      string  `json:"log_url"`
	Revision    string  `json:"revision"`
	RepoPath    string  `json:"repo_path"`
	RequestIDs  []int64 `json:"request_ids"`
	SlaveName   string  `json:"slavename"`
}

// MatchesRequest reports whether id belongs to this build.
//
// The root request_ids list and the properties list are not guaranteed
// consistent with each other upstream, so membership in either counts.
func (b *Build) MatchesRequest(id int64) bool {
	for _, r := range b.RequestIDs {
		if r == id {
			return true
		}
	}
	for _, r := range b.Properties.RequestIDs {
		if r == id {
			return true
		}
	}
	return false
}
