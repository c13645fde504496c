package fiscal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSealFormat(t *testing.T) {
	issued := time.Date(2025, 6, 14, 22, 30, 0, 0, time.UTC)
	seal := Seal("SRT", 12, 345, issued)

	assert.True(t, strings.HasPrefix(seal, "SRT-000012-00000345-20250614-"))
	assert.True(t, Verify(seal))
}

func TestSealIsDeterministic(t *testing.T) {
	issued := time.Date(2025, 6, 14, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, Seal("SRT", 1, 1, issued), Seal("SRT", 1, 1, issued))
}

func TestSealChangesWithProgressive(t *testing.T) {
	issued := time.Now()
	assert.NotEqual(t, Seal("SRT", 1, 1, issued), Seal("SRT", 1, 2, issued))
}

func TestVerifyRejectsTampering(t *testing.T) {
	seal := Seal("SRT", 12, 345, time.Now())
	tampered := strings.Replace(seal, "00000345", "00000346", 1)
	assert.False(t, Verify(tampered))
	assert.False(t, Verify("garbage"))
	assert.False(t, Verify(""))
}

func TestQRDataURI(t *testing.T) {
	seal := Seal("SRT", 12, 345, time.Now())
	uri, err := QRDataURI(seal, 300)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Greater(t, len(uri), len("data:image/png;base64,"))
}
