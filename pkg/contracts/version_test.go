package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, DataFormatVersion, info.DataFormat)
	assert.Equal(t, APIVersion, info.APIVersion)
}

func TestGetFullVersionString(t *testing.T) {
	full := GetFullVersionString()

	assert.Contains(t, full, GetVersionString())
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, full, "commit: "+GitCommit)
}
