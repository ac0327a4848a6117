package identityqueue

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/wotpulse/internal/oerrors"
)

// fileExtension marks queued identity documents, grounded on the
// original queue's ".wot-identity" suffix convention.
const fileExtension = ".identity.xml"

// Queue is a directory-backed set of pending identity documents; Drain
// picks them up in filename order, not arrival order.
// Producers call Enqueue as files arrive from the network; the coordinator's
// work body calls Drain once triggered, to pick up everything that landed
// since the last drain in one pass - the deduplication job.DelayedJob
// already provides means Drain never needs to run once per file.
//
// Writes land via a staging file renamed into place, adapted from the
// teacher's am/persist.go pattern of writing to a temp path and
// os.Rename-ing over the target rather than writing it directly, so a
// concurrent Drain never observes a partially written file.
type Queue struct {
	dir          string
	processedDir string
}

// NewQueue creates (if needed) dir and its "processed" archive subdirectory
// and returns a Queue backed by them.
func NewQueue(dir string) (*Queue, error) {
	processedDir := filepath.Join(dir, "processed")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, oerrors.Wrapf(err, "failed to create queue dir %s", dir)
	}
	if err := os.MkdirAll(processedDir, 0755); err != nil {
		return nil, oerrors.Wrapf(err, "failed to create processed dir %s", processedDir)
	}

	return &Queue{dir: dir, processedDir: processedDir}, nil
}

// Dir returns the directory Enqueue writes to and a fsnotify Watcher
// should watch.
func (q *Queue) Dir() string { return q.dir }

// Enqueue atomically writes data as a pending identity document and returns
// the path it landed at. The filename is keyed on the identity's ID, not a
// fresh random name, so a later edition of the same identity overwrites the
// still-pending earlier one instead of queuing both - the queue's headline
// dedup behavior, carried from the original's habit of colliding filenames
// on purpose for exactly this reason. Documents that fail to parse cannot be
// deduplicated this way and fall back to a random name; Drain still archives
// them as unparseable.
func (q *Queue) Enqueue(data []byte) (string, error) {
	name := uuid.NewString() + fileExtension
	if id, err := ParseIdentity(data); err == nil {
		name = id.ID + fileExtension
	}

	target := filepath.Join(q.dir, name)
	staging := target + ".tmp"

	if err := os.WriteFile(staging, data, 0644); err != nil {
		return "", oerrors.Wrapf(err, "failed to write staging file %s", staging)
	}
	if err := os.Rename(staging, target); err != nil {
		return "", oerrors.Wrapf(err, "failed to rename %s into place", staging)
	}
	return target, nil
}

// Drain reads every pending identity document, parses it, and archives it
// into the processed subdirectory. Files that fail to parse are archived
// too, without being returned or reported, rather than left to jam future
// drains.
func (q *Queue) Drain() ([]Identity, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, oerrors.Wrapf(err, "failed to list queue dir %s", q.dir)
	}

	var identities []Identity
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) == ".tmp" {
			continue
		}
		path := filepath.Join(q.dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		id, parseErr := ParseIdentity(data)
		if parseErr == nil {
			info, statErr := entry.Info()
			if statErr == nil {
				id.LastFetched = info.ModTime()
			} else {
				id.LastFetched = time.Now()
			}
			identities = append(identities, id)
		}

		archived := filepath.Join(q.processedDir, entry.Name())
		_ = os.Rename(path, archived)
	}

	return identities, nil
}
