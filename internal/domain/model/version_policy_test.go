package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode VersionMode
		want VersionRequirement
		hint string
	}{
		{VersionModeLatest, VersionForbidden, "most recently approved version will be used"},
		{VersionModeList, VersionForbidden, "choose from the 5 most recent versions"},
		{VersionModeManual, VersionRequired, "example: 15.13.0.0-0"},
		{VersionModeHead, VersionForbidden, "most recent commit on the branch will be used"},
		{VersionModeHash, VersionRequired, "full or abbreviated commit hash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequirementFor(tt.mode), tt.mode)
		assert.Equal(t, tt.hint, HintFor(tt.mode), tt.mode)
	}

	assert.Equal(t, VersionForbidden, RequirementFor("bogus"))
	assert.Empty(t, HintFor("bogus"))
}

func TestParseVersionMode(t *testing.T) {
	t.Parallel()

	m, err := ParseVersionMode(" Manual ")
	require.NoError(t, err)
	assert.Equal(t, VersionModeManual, m)

	_, err = ParseVersionMode("nightly")
	require.Error(t, err)
	_, err = ParseVersionMode("")
	require.Error(t, err)
}

func TestVersionMode_JSONDecodesAnyString(t *testing.T) {
	t.Parallel()

	var raw RawJobRequest
	require.NoError(t, json.Unmarshal([]byte(`{"app_name":"","version_mode":"bogus"}`), &raw))
	assert.Equal(t, VersionMode("bogus"), raw.VersionMode)

	require.NoError(t, json.Unmarshal([]byte(`{"version_mode":""}`), &raw))
	assert.Empty(t, raw.VersionMode)
}

func TestDescribeVersionModes(t *testing.T) {
	t.Parallel()

	infos := DescribeVersionModes()
	require.Len(t, infos, len(AllVersionModes()))
	assert.Equal(t, VersionModeInfo{
		Mode:        VersionModeManual,
		Requirement: VersionRequired,
		Hint:        "example: 15.13.0.0-0",
	}, infos[2])
}
