package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditMetadata_ValueAndScan(t *testing.T) {
	in := AuditMetadata{"mode": "email", "hard": false}

	v, err := in.Value()
	require.NoError(t, err)

	var out AuditMetadata
	require.NoError(t, out.Scan(v))
	assert.Equal(t, "email", out["mode"])
	assert.Equal(t, false, out["hard"])
}

func TestAuditMetadata_ScanNil(t *testing.T) {
	var out AuditMetadata
	require.NoError(t, out.Scan(nil))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAuditMetadata_ScanRejectsUnknownType(t *testing.T) {
	var out AuditMetadata
	assert.ErrorIs(t, out.Scan(42), ErrBadRequest)
}

func TestAuditMetadata_NilValue(t *testing.T) {
	var am AuditMetadata
	v, err := am.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
