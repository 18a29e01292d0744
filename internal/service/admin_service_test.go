package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/konsinyasi/internal/auth"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/store"
)

func newAdminService(t *testing.T) (*AdminService, *auth.Issuer) {
	t.Helper()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := NewAdminService(store.NewConfigStore(newTestDB(t)), issuer, discardLogger())
	require.NoError(t, svc.Bootstrap(context.Background(), "bos123"))
	return svc, issuer
}

func TestSignInIssuesStaffSession(t *testing.T) {
	svc, issuer := newAdminService(t)

	sess, err := svc.SignIn()
	require.NoError(t, err)
	assert.Equal(t, auth.RoleStaff, sess.Role)

	claims, err := issuer.Validate(sess.Token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestUnlock(t *testing.T) {
	svc, issuer := newAdminService(t)
	ctx := context.Background()

	_, err := svc.Unlock(ctx, "wrong")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	sess, err := svc.Unlock(ctx, "bos123")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, sess.Role)

	claims, err := issuer.Validate(sess.Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestBootstrapKeepsExistingPassword(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "another"))

	_, err := svc.Unlock(ctx, "bos123")
	assert.NoError(t, err)
	_, err = svc.Unlock(ctx, "another")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAdminService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "bos123", "short")
	assert.True(t, domain.IsValidation(err))

	err = svc.ChangePassword(ctx, "nope", "longenough")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, "bos123", "rahasia"))

	_, err = svc.Unlock(ctx, "bos123")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
	_, err = svc.Unlock(ctx, "rahasia")
	assert.NoError(t, err)
}

func TestUnlockWithoutAdminRecord(t *testing.T) {
	svc := NewAdminService(store.NewConfigStore(newTestDB(t)), auth.NewIssuer("s", time.Hour), discardLogger())

	_, err := svc.Unlock(context.Background(), "bos123")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
}
