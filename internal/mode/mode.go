// Package mode interprets page invocation parameters into an operating mode.
package mode

import (
	"net/url"
)

// Source identifies where the catalog is loaded from.
type Source string

const (
	SourceLocalStore Source = "local"
	SourceRemoteURL  Source = "remote"
	SourceSnapshot   Source = "snapshot"
)

// Mode is the resolved operating mode for one session.
type Mode struct {
	Editable          bool
	AdminPanelVisible bool
	ReadOnlyShare     bool
	Source            Source
	SourceURL         string // set when Source is SourceRemoteURL
	Snapshot          string // raw encoded snapshot when Source is SourceSnapshot
}

// Query parameter names understood by the page.
const (
	ParamEdit     = "edit"
	ParamAdmin    = "admin"
	ParamSrc      = "src"
	ParamSnapshot = "catalog"
)

// Resolve computes the operating mode from query parameters. Rules apply in
// order, first match wins: edit beats admin beats src beats an embedded
// snapshot; with none of those the session is a plain editable local one.
func Resolve(query url.Values) Mode {
	src := query.Get(ParamSrc)
	snapshot := query.Get(ParamSnapshot)

	switch {
	case query.Get(ParamEdit) == "1":
		m := Mode{Editable: true, Source: SourceLocalStore}
		if src != "" {
			// Edit sessions may seed the local store from a remote
			// catalog once; the session itself stays local.
			m.SourceURL = src
		}
		return m
	case query.Get(ParamAdmin) == "1":
		m := Mode{Editable: true, AdminPanelVisible: true, Source: SourceLocalStore}
		if src != "" {
			m.SourceURL = src
		}
		return m
	case src != "":
		return Mode{ReadOnlyShare: true, Source: SourceRemoteURL, SourceURL: src}
	case snapshot != "":
		return Mode{ReadOnlyShare: true, Source: SourceSnapshot, Snapshot: snapshot}
	default:
		return Mode{Editable: true, Source: SourceLocalStore}
	}
}

// RedirectToDiscoveredCatalog decides whether a navigation with the given
// parameters should be redirected to a catalog file discovered next to the
// page. probeOK reports whether the existence check found the file. The
// returned URL carries the src parameter, so a redirected navigation can
// never trigger a second redirect.
func RedirectToDiscoveredCatalog(query url.Values, probeOK bool, base, discovered string) (string, bool) {
	if !probeOK {
		return "", false
	}
	if query.Get(ParamEdit) == "1" || query.Get(ParamAdmin) == "1" {
		return "", false
	}
	if query.Get(ParamSrc) != "" || query.Get(ParamSnapshot) != "" {
		return "", false
	}
	return base + "?" + ParamSrc + "=" + url.QueryEscape(discovered), true
}
