package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://reports/attendance/2025-10.xlsx", "reports", "attendance/2025-10.xlsx", true},
		{"s3://reports", "reports", "", true},
		{"s3:///key", "", "key", false},
		{"./punches.csv", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, key, ok := ParseURL(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.bucket, bucket)
				assert.Equal(t, tt.key, key)
			}
		})
	}
}
