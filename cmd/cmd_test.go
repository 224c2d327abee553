package cmd

import (
	"bytes"
	"context"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/catalog"
	"launchpad/internal/memstore"
	"launchpad/internal/models"
	"launchpad/internal/oracle"
)

func newCLI(args ...string) (*bytes.Buffer, error) {
	root := RootCmd()
	root.AddCommand(ServeCmd(), ReporterCmd(), AdminCmd())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return out, root.Execute()
}

func TestRootListsCommands(t *testing.T) {
	out, err := newCLI()
	require.NoError(t, err)
	for _, name := range []string{"serve", "reporter", "admin"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestGrantRequiresWallet(t *testing.T) {
	_, err := newCLI("admin", "grant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet")
}

func TestMemoryStorageIsRejectedOutsideServe(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("STORAGE", "memory")

	_, err := newCLI("admin", "grant", "--wallet", "wallet-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent storage")

	t.Setenv("METRICSFEEDURL", "ws://localhost:4000/socket")
	_, err = newCLI("reporter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared storage")
}

func TestServeRequiresJWTSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWTSECRET", "")

	_, err := newCLI("serve")
	require.Error(t, err)
}

func TestSeedAdminGrantsSuperAdmin(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	svc := catalog.NewService(memstore.New(), oracle.NewClient(oracle.DefaultRPCURL, oracle.DefaultTimeout, logger), catalog.WithLogger(logger))
	ctx := context.Background()
	hook.Reset()

	require.NoError(t, seedAdmin(ctx, svc, "", logger))
	assert.Empty(t, hook.AllEntries())

	require.NoError(t, seedAdmin(ctx, svc, "root-wallet", logger))
	id, err := svc.ResolveAdmin(ctx, "root-wallet")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, id.Role)
	assert.NotEmpty(t, id.AdminID)
	assert.Equal(t, "Seeded super admin", hook.LastEntry().Message)

	// restarting with the same wallet keeps the admin row
	require.NoError(t, seedAdmin(ctx, svc, "root-wallet", logger))
	again, err := svc.ResolveAdmin(ctx, "root-wallet")
	require.NoError(t, err)
	assert.Equal(t, id.AdminID, again.AdminID)
}
