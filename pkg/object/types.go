package object

// Hash is a 64-character hex-encoded digest.
type Hash string

// Short returns the abbreviated form used in log output.
func (h Hash) Short() string {
	if len(h) > 7 {
		return string(h[:7])
	}
	return string(h)
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// CommitObj is an immutable snapshot: a file name to blob id mapping plus
// metadata. SecondParent is set only on merge commits.
type CommitObj struct {
	Timestamp    int64
	Message      string
	Parent       Hash
	SecondParent Hash
	Files        map[string]Hash
}

// Parents returns the non-empty parent ids, first parent first.
func (c *CommitObj) Parents() []Hash {
	var out []Hash
	if c.Parent != "" {
		out = append(out, c.Parent)
	}
	if c.SecondParent != "" {
		out = append(out, c.SecondParent)
	}
	return out
}

// IsMerge reports whether the commit has two parents.
func (c *CommitObj) IsMerge() bool {
	return c.SecondParent != ""
}
