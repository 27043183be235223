// Package mapping manages the host/component mapping of a cluster: a set of
// (host, component) association pairs edited locally and reconciled with the
// server using the same local/remote merge shape as configuration refresh.
package mapping

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Entry is one host/component association.
type Entry struct {
	HostID      int64
	ComponentID int64
}

// Data is a set of mapping entries.
type Data = mapset.Set[Entry]

// NewData builds a mapping set from entries.
func NewData(entries ...Entry) Data {
	return mapset.NewSet[Entry](entries...)
}

// Local is one editing session's view: the set fetched at session start and
// the live edited set.
type Local struct {
	Initial Data
	Current Data
}

// RefreshStrategy reconciles local mapping edits with a freshly fetched
// remote set.
type RefreshStrategy func(local Local, remote Data) Data

// ApplyLocalChanges keeps everything locally current or already remote,
// except the pairs that were removed locally ("local wins").
func ApplyLocalChanges(local Local, remote Data) Data {
	all := local.Current.Union(remote)
	removedLocally := local.Initial.Difference(local.Current)
	return all.Difference(removedLocally)
}

// ApplyRemoteChanges keeps everything locally current or remote, except the
// pairs that were removed remotely ("remote wins").
func ApplyRemoteChanges(local Local, remote Data) Data {
	all := local.Current.Union(remote)
	removedRemotely := local.Initial.Difference(remote)
	return all.Difference(removedRemotely)
}
