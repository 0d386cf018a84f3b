package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	timestamp T
//	parent H     (absent on the root commit)
//	merge H      (merge commits only)
//	file H name  (zero or more, sorted by name)
//
//	message
//
// The file name comes last on its line so names containing spaces survive.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", c.Parent)
	}
	if c.SecondParent != "" {
		fmt.Fprintf(&buf, "merge %s\n", c.SecondParent)
	}

	names := make([]string, 0, len(c.Files))
	for name := range c.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&buf, "file %s %s\n", c.Files[name], name)
	}

	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message, Files: make(map[string]Hash)}
	sawTimestamp := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
			sawTimestamp = true
		case "parent":
			c.Parent = Hash(val)
		case "merge":
			c.SecondParent = Hash(val)
		case "file":
			h, name, ok := strings.Cut(val, " ")
			if !ok || h == "" || name == "" {
				return nil, fmt.Errorf("unmarshal commit: malformed file entry %q", val)
			}
			if _, dup := c.Files[name]; dup {
				return nil, fmt.Errorf("unmarshal commit: duplicate file entry %q", name)
			}
			c.Files[name] = Hash(h)
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if !sawTimestamp {
		return nil, fmt.Errorf("unmarshal commit: missing timestamp")
	}
	if c.SecondParent != "" && c.Parent == "" {
		return nil, fmt.Errorf("unmarshal commit: merge parent without first parent")
	}
	return c, nil
}
