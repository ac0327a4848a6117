// Package identityqueue is a concrete consumer of job.DelayedJob: it
// watches a directory for identity XML files landing from the network and
// triggers a coordinator on every file that lands, so that the coordinator
// runs one rescore pass per quiescence window no matter how many files
// arrive in a burst.
package identityqueue

import (
	"encoding/xml"
	"time"
)

// Identity is the trimmed subset of a WebOfTrust identity document this
// package cares about: enough to decide a rescore is warranted, not a
// full trust-list parse (computing an actual web-of-trust score graph is
// out of scope here).
type Identity struct {
	XMLName     xml.Name  `xml:"WoT_Identity"`
	ID          string    `xml:"Identity>ID" json:"id"`
	Edition     int64     `xml:"Identity>Edition" json:"edition"`
	LastFetched time.Time `json:"last_fetched"`
}

// ParseIdentity decodes an identity XML document into an Identity.
// LastFetched is not present in the document; callers set it from the
// moment the file was observed.
func ParseIdentity(data []byte) (Identity, error) {
	var id Identity
	if err := xml.Unmarshal(data, &id); err != nil {
		return Identity{}, err
	}
	return id, nil
}
