package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	calls int
	data  []ResinDispatch
}

func (c *countingRepo) OrdersByLocation(context.Context) ([]LocationOrders, error) {
	c.calls++
	return []LocationOrders{{LocationCode: "PUN", OrderCount: 2, TotalVolume: 70}}, nil
}

func (c *countingRepo) DispatchedByResin(context.Context) ([]ResinDispatch, error) {
	c.calls++
	return c.data, nil
}

func (c *countingRepo) InactiveClients(context.Context, time.Time) ([]InactiveClient, error) {
	c.calls++
	return []InactiveClient{{Name: "Nomad Traders"}}, nil
}

func newTestReports(t *testing.T, repo RepositoryPort) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, NewCache(client, time.Minute))
}

func TestDispatchedByResinIsCached(t *testing.T) {
	repo := &countingRepo{data: []ResinDispatch{
		{ResinType: "Epoxy", DispatchedTotal: 130, RecordCount: 2},
	}}
	svc := newTestReports(t, repo)
	ctx := context.Background()

	first, err := svc.DispatchedByResin(ctx)
	require.NoError(t, err)
	require.Equal(t, repo.data, first)
	require.Equal(t, 1, repo.calls)

	second, err := svc.DispatchedByResin(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls)
}

func TestInvalidateBumpsVersion(t *testing.T) {
	repo := &countingRepo{data: []ResinDispatch{{ResinType: "Alkyd", DispatchedTotal: 40, RecordCount: 1}}}
	svc := newTestReports(t, repo)
	ctx := context.Background()

	_, err := svc.DispatchedByResin(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	require.NoError(t, svc.Invalidate(ctx))

	repo.data = []ResinDispatch{{ResinType: "Alkyd", DispatchedTotal: 55, RecordCount: 2}}
	out, err := svc.DispatchedByResin(ctx)
	require.NoError(t, err)
	require.Equal(t, repo.data, out)
	require.Equal(t, 2, repo.calls)
}

func TestInactiveClientsDefaultsWindow(t *testing.T) {
	repo := &countingRepo{}
	svc := newTestReports(t, repo)

	out, err := svc.InactiveClients(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Nomad Traders", out[0].Name)
}
