package model

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

// Version is a three-part release version with an optional pre-release
// suffix. Pre holds the compact normalized form ("b12", "rc1"); it is
// empty for final releases.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Pre   string
}

// compact form as published by this module: 0.3.0b12, 1.0.0rc1
var compactRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:(alpha|beta|rc|a|b)(\d+))?$`)

// dash form as published on npm: beta.12, rc.1
var dashPreRe = regexp.MustCompile(`^([A-Za-z]+)\.(\d+)$`)

var preLabels = map[string]string{
	"a":     "a",
	"alpha": "a",
	"b":     "b",
	"beta":  "b",
	"rc":    "rc",
}

// ParseVersion parses either the dash-delimited form used on npm
// ("0.3.0-beta.12") or the compact form used by this module ("0.3.0b12").
// Exactly three dot-separated integer components are required; build
// metadata and unknown pre-release labels are rejected.
func ParseVersion(s string) (Version, error) {
	if sv, err := semver.StrictNewVersion(s); err == nil {
		if sv.Metadata() != "" {
			return Version{}, goerr.Wrap(types.ErrVersionFormat, "build metadata is not allowed", goerr.V("version", s))
		}
		pre, err := normalizePre(sv.Prerelease())
		if err != nil {
			return Version{}, goerr.Wrap(err, "unsupported pre-release", goerr.V("version", s))
		}
		return Version{Major: sv.Major(), Minor: sv.Minor(), Patch: sv.Patch(), Pre: pre}, nil
	}

	m := compactRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, goerr.Wrap(types.ErrVersionFormat, "expected major.minor.patch with optional pre-release", goerr.V("version", s))
	}
	var parts [3]uint64
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Version{}, goerr.Wrap(types.ErrVersionFormat, "version component out of range", goerr.V("version", s))
		}
		parts[i] = n
	}
	v := Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}
	if m[4] != "" {
		v.Pre = preLabels[m[4]] + m[5]
	}
	return v, nil
}

// normalizePre maps an npm pre-release segment ("beta.12") to the compact
// label form ("b12").
func normalizePre(pre string) (string, error) {
	if pre == "" {
		return "", nil
	}
	m := dashPreRe.FindStringSubmatch(pre)
	if m == nil {
		return "", goerr.Wrap(types.ErrVersionFormat, "pre-release must be label.number", goerr.V("pre", pre))
	}
	label, ok := preLabels[m[1]]
	if !ok {
		return "", goerr.Wrap(types.ErrVersionFormat, fmt.Sprintf("unknown pre-release label %q", m[1]))
	}
	return label + m[2], nil
}

// Bump returns the next patch version. Pre-release suffixes are dropped,
// never incremented; major and minor are never touched.
func (v Version) Bump() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// String renders the compact form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Pre)
}

// Tag renders the git tag / Go module version form.
func (v Version) Tag() string {
	return "v" + v.String()
}

// IsPre reports whether the version carries a pre-release suffix.
func (v Version) IsPre() bool {
	return v.Pre != ""
}

// SameMajorMinor reports whether two versions share the major.minor pair.
func (v Version) SameMajorMinor(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor
}
