package appfs_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/thinkwise/fs"
)

func TestFS(t *testing.T) {
	tests := []string{
		"migrations/00001_roster.sql",
		"migrations/00002_accounting.sql",
		"migrations/00003_users.sql",
		"templates/email/_base.gohtml",
		"templates/email/_base.txt",
		"templates/email/payment_receipt.gohtml",
		"templates/email/payment_receipt.txt",
	}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			info, err := fs.Stat(appfs.FS, name)
			require.NoError(t, err)
			assert.NotZero(t, info.Size())
		})
	}
}
