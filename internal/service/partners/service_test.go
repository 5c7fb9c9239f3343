package partners_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/repository/memory"
	"food-dispatch/internal/service/partners"
)

func TestService_RegisterGetList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := partners.NewService(memory.NewPartners(), time.Second, logx.Nop())

	p, err := svc.Register(ctx, "  ravi ")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "ravi", p.Name)
	require.Equal(t, domain.PartnerIdle, p.Status)

	_, err = svc.Register(ctx, "anu")
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "ravi", got.Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "ravi", all[0].Name)
}

func TestService_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := partners.NewService(memory.NewPartners(), time.Second, logx.Nop())

	_, err := svc.Register(ctx, " ")
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.Register(ctx, "ravi")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ravi")
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Get(ctx, "")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
