package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRegistraSubcomandos(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["history"])
	assert.True(t, names["verify"])
	assert.NotNil(t, historyCmd.Flags().Lookup("pdf"))
}

func TestHistoryRequiereID(t *testing.T) {
	assert.Error(t, historyCmd.Args(historyCmd, nil))
	assert.NoError(t, historyCmd.Args(historyCmd, []string{"abc"}))
}
