package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-streaming-store/internal/apperr"
)

func registration() Registration {
	return Registration{Name: "Ana", Phone: "999888777", Email: " Ana@Example.com ", Username: "ana", Password: "secreto"}
}

func TestRegisterAndLogin(t *testing.T) {
	st := newMemStore()
	rec := &recorder{}
	acc := &Accounts{Store: st, Publisher: rec, Log: discardLogger()}
	ctx := context.Background()

	u, err := acc.Register(ctx, registration())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, DefaultCountryCode, u.CountryCode)
	assert.NotEqual(t, "secreto", u.PasswordHash)
	assert.Equal(t, []string{"users:INSERT"}, rec.changes)

	got, err := acc.Login(ctx, "ana", "secreto")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = acc.Login(ctx, "ana", "wrong!")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = acc.Login(ctx, "nobody", "secreto")
	assert.ErrorIs(t, err, ErrBadCredentials)

	active, err := acc.Active(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", active.Username)
}

func TestRegisterValidation(t *testing.T) {
	acc := &Accounts{Store: newMemStore(), Publisher: &recorder{}, Log: discardLogger()}

	short := registration()
	short.Password = "12345"
	_, err := acc.Register(context.Background(), short)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	missing := registration()
	missing.Phone = " "
	_, err = acc.Register(context.Background(), missing)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicate(t *testing.T) {
	acc := &Accounts{Store: newMemStore(), Publisher: &recorder{}, Log: discardLogger()}
	_, err := acc.Register(context.Background(), registration())
	require.NoError(t, err)

	dup := registration()
	dup.Email = "other@example.com"
	_, err = acc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	st := newMemStore()
	acc := &Accounts{Store: st, Publisher: &recorder{}, Log: discardLogger()}
	u, err := acc.Register(context.Background(), registration())
	require.NoError(t, err)

	u.IsActive = false
	st.users[u.ID] = u

	_, err = acc.Login(context.Background(), "ana", "secreto")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = acc.Active(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrLoginRequired)
}
