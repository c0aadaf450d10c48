package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTags(t *testing.T) {
	tests := []struct {
		name    string
		tags    []string
		wantTag string // the rejected tag, empty means accepted
	}{
		{"no tags", nil, ""},
		{"plain tags", []string{"backend", "p1", "api"}, ""},
		{"reserved approved", []string{"backend", "approved"}, "approved"},
		{"reserved draft", []string{"draft"}, "draft"},
		{"reserved review", []string{"review"}, "review"},
		{"reserved deprecated", []string{"deprecated"}, "deprecated"},
		{"deployed prefix", []string{"deployed-v3"}, "deployed-v3"},
		{"deployed release", []string{"deployed-REL-0001"}, "deployed-REL-0001"},
		{"case insensitive", []string{"Approved"}, "Approved"},
		{"deployed substring ok", []string{"not-deployed"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTags(tt.tags)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var rerr *ReservedTagError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.wantTag, rerr.Tag)
		})
	}
}
